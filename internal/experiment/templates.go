package experiment

import (
	"fmt"
	"strings"

	"github.com/sells-group/growth-cli/internal/model"
)

// template is a reusable experiment idea matched to a funnel step by name.
type template struct {
	key        string
	keywords   []string
	name       string // %s is the step name
	hypothesis string // %s is the step name, %.1f the drop-off percentage
	metric     string
	treatment  model.ExperimentVariant
}

var templates = []template{
	{
		key:        "signup_form",
		keywords:   []string{"signup", "sign_up", "register"},
		name:       "Shorter %s form",
		hypothesis: "Cutting optional fields from %s will recover part of the %.1f%% of users who drop off there.",
		metric:     "signup_completion_rate",
		treatment:  model.ExperimentVariant{Name: "short_form", Description: "Only email and password; collect the rest after signup."},
	},
	{
		key:        "checkout_trust",
		keywords:   []string{"checkout", "purchase", "payment"},
		name:       "Trust signals at %s",
		hypothesis: "Showing guarantees and payment badges at %s will reduce the %.1f%% abandonment.",
		metric:     "purchase_conversion_rate",
		treatment:  model.ExperimentVariant{Name: "trust_badges", Description: "Money-back guarantee and secure payment badges next to the pay button."},
	},
	{
		key:        "pricing_clarity",
		keywords:   []string{"pricing", "plan"},
		name:       "Clearer plans on %s",
		hypothesis: "A simpler plan comparison on %s will lower the %.1f%% drop-off.",
		metric:     "plan_selection_rate",
		treatment:  model.ExperimentVariant{Name: "comparison_table", Description: "Three plans side by side with the recommended plan highlighted."},
	},
	{
		key:        "guided_onboarding",
		keywords:   []string{"onboard", "activation", "activate"},
		name:       "Guided %s",
		hypothesis: "A step-by-step checklist during %s will activate more of the %.1f%% who stall.",
		metric:     "activation_rate",
		treatment:  model.ExperimentVariant{Name: "checklist", Description: "Progress checklist with the first task pre-selected."},
	},
	{
		key:        "cart_reminder",
		keywords:   []string{"cart", "basket"},
		name:       "Persistent %s reminder",
		hypothesis: "Reminding users of items left at %s will win back some of the %.1f%% who leave.",
		metric:     "cart_to_checkout_rate",
		treatment:  model.ExperimentVariant{Name: "sticky_cart", Description: "Sticky cart summary with item count and a checkout button."},
	},
}

var genericTemplate = template{
	key:        "cta_emphasis",
	name:       "Stronger call to action at %s",
	hypothesis: "A clearer primary call to action at %s will reduce the %.1f%% drop-off.",
	metric:     "step_conversion_rate",
	treatment:  model.ExperimentVariant{Name: "bold_cta", Description: "Single high-contrast primary button with benefit-led copy."},
}

var control = model.ExperimentVariant{Name: "control", Description: "Current experience."}

// match picks the first template whose keyword appears in step.
func match(step string) template {
	s := strings.ToLower(step)
	for _, t := range templates {
		for _, k := range t.keywords {
			if strings.Contains(s, k) {
				return t
			}
		}
	}
	return genericTemplate
}

func (t template) render(step string, dropOffRate float64) (name, hypothesis string) {
	return fmt.Sprintf(t.name, step), fmt.Sprintf(t.hypothesis, step, dropOffRate*100)
}
