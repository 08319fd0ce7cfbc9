/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type SendEmailConfig struct {
	DbPath         string
	From           string
	To             string
	Types          []string
	Params         []map[string]string
	DryRun         bool
	SendgridApiKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <analysis_name...>",
	Short: "Sends an emailed report",
	Long: `Emails one or more analyses to the given address.
  <analysis_name> is one or more of: score, correlate, cluster, check.
  Analyses that find nothing to report are left out of the email.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		analysisTypes := args[1:]

		params, _ := cmd.Flags().GetStringArray("params")
		if len(params) > 0 && len(params) != len(analysisTypes) {
			fmt.Printf("Error: Number of --params flags (%d) must match number of reports (%d), or be 0.\n", len(params), len(analysisTypes))
			os.Exit(1)
		}

		structuredParams := make([]map[string]string, len(analysisTypes))
		for i, v := range params {
			pMap := make(map[string]string)
			if v != "" {
				pairs := strings.Split(v, ",")
				for _, pair := range pairs {
					kv := strings.SplitN(pair, "=", 2)
					if len(kv) == 2 {
						pMap[kv[0]] = kv[1]
					}
				}
			}
			structuredParams[i] = pMap
		}

		config := SendEmailConfig{
			DbPath:         viper.GetString("database"),
			From:           viper.GetString("from"),
			To:             args[0],
			Types:          analysisTypes,
			Params:         structuredParams,
			DryRun:         viper.GetBool("dryRun"),
			SendgridApiKey: viper.GetString("sendgrid_api_key"),
		}
		err := sendEmail(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'n=20')")
}

func sendEmail(config SendEmailConfig) error {
	actions := make([]Analyser, 0)
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return err
		}

		if config.Params != nil && i < len(config.Params) {
			params := config.Params[i]
			if len(params) > 0 {
				if configurable, ok := action.(Configurable); ok {
					err := configurable.Configure(params)
					if err != nil {
						return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
					}
				}
			}
		}

		actions = append(actions, action)
	}

	subject, out, err := generateEmailContent(config, actions)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("Nothing to report.")
		return nil
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.SendgridApiKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("spotify-tools", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, out, out)
	client := sendgrid.NewSendClient(config.SendgridApiKey)
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	return nil
}

// generateEmailContent renders each analysis to an HTML section. Analyses
// returning ErrSkipReport are left out; if all of them skip, the subject
// and body come back empty.
func generateEmailContent(config SendEmailConfig, actions []Analyser) (subject string, body string, err error) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	rendered := 0
	for _, action := range actions {
		analysis, err := action.GetResults(config.DbPath)
		if err == ErrSkipReport {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}
		rendered++

		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s:</h2>\n", action.GetName())

		if analysis.BodyOverride != "" {
			out += "<pre>" + analysis.BodyOverride + "</pre>\n"
		} else if len(analysis.results) <= 1 {
			out += "<div>No tracks found.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range analysis.results[0] {
				out += fmt.Sprintf("<th>%s</th>", header)
			}
			out += `				</tr>
			</thead>`

			for _, row := range analysis.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", column)
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		out += fmt.Sprintf(`<div>%s</div>
		</div>`, analysis.summary)
	}

	if rendered == 0 {
		return "", "", nil
	}

	out += `
  </body>
</html>
`

	subject = fmt.Sprintf("Playlist report %s", time.Now().Format("2006-01-02"))
	return subject, out, nil
}

func getActionFromName(actionName string) (Analyser, error) {
	// Recreating map every time but it's fine. Pointers required for Configure.
	actionMap := map[string]Analyser{
		"score":     &ScoreAnalyzer{Config: AnalyserConfig{NumToReturn: 20}},
		"correlate": &CorrelateAnalyzer{},
		"cluster":   &ClusterAnalyzer{},
		"check":     &CheckAnalyzer{},
	}

	action, ok := actionMap[actionName]
	if !ok {
		return nil, fmt.Errorf("Invalid analysis_name: %s", actionName)
	}

	return action, nil
}
