package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/notification"
)

// requestFlags collects a notification request from command line flags.
type requestFlags struct {
	recipient    string
	subject      string
	templateName string
	notifType    string
	category     string
	vars         map[string]string
	varsJSON     string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.recipient, "to", "", "Recipient address")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&f.templateName, "template", "", "Template name, e.g. verification")
	cmd.Flags().StringVar(&f.notifType, "type", string(notification.TypeEmail), "Notification type")
	cmd.Flags().StringVar(&f.category, "category", "", "Notification category")
	cmd.Flags().StringToStringVar(&f.vars, "var", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().StringVar(&f.varsJSON, "vars-json", "", "Template variables as a JSON object; merged under --var")
}

// request builds the notification request. Validation is left to the
// delivery service so CLI and API report the same errors.
func (f *requestFlags) request() (notification.Request, error) {
	vars := map[string]any{}
	if f.varsJSON != "" {
		dec := json.NewDecoder(strings.NewReader(f.varsJSON))
		dec.UseNumber()
		if err := dec.Decode(&vars); err != nil {
			return notification.Request{}, fmt.Errorf("parsing --vars-json: %w", err)
		}
	}
	for k, v := range f.vars {
		vars[k] = v
	}
	if len(vars) == 0 {
		vars = nil
	}

	return notification.Request{
		Recipient:         f.recipient,
		Subject:           f.subject,
		TemplateName:      f.templateName,
		TemplateVariables: vars,
		Type:              notification.Type(strings.ToUpper(f.notifType)),
		Category:          notification.Category(strings.ToUpper(f.category)),
	}, nil
}
