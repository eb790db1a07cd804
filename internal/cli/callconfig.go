package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-screener/internal/config"
	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/services"

	"github.com/spf13/cobra"
)

var (
	callConfigJobDescription string
	callConfigModel          string
	callConfigCallID         string
	callConfigTemplatePath   string
)

var callConfigCmd = &cobra.Command{
	Use:   "call-config",
	Short: "Print the Ultravox request a screening would send",
	Long: `Build the call configuration for a job description from the call
template and print the request body sent to the Ultravox API, without
creating a call.`,
	RunE: runCallConfig,
}

func init() {
	callConfigCmd.Flags().StringVarP(&callConfigJobDescription, "job-description", "j", "", "Job description to screen for")
	callConfigCmd.Flags().StringVar(&callConfigModel, "model", "", "Model override, without the fixie-ai/ prefix")
	callConfigCmd.Flags().StringVar(&callConfigCallID, "call-id", "", "Session id to inject (generated when empty)")
	callConfigCmd.Flags().StringVar(&callConfigTemplatePath, "template", "", "Call template file (overrides CALL_TEMPLATE_PATH)")
}

func runCallConfig(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(callConfigJobDescription) == "" {
		return errors.New("--job-description is required")
	}

	path := callConfigTemplatePath
	if path == "" {
		path = config.GetEnv("CALL_TEMPLATE_PATH", "")
	}
	template, err := config.LoadCallTemplate(path)
	if err != nil {
		return err
	}

	payload := renderCallRequest(template, callConfigJobDescription, callConfigModel, callConfigCallID, time.Now())

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding call request: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func renderCallRequest(template *config.CallTemplate, jobDescription, model, callID string, now time.Time) dto.UltravoxCallRequest {
	if callID == "" {
		callID = services.NewSessionID()
	}
	if model != "" {
		model = entities.ModelPrefix + model
	}

	cfg := services.BuildCallConfig(template.CallConfig, jobDescription, model, callID)
	cfg = services.InjectCurrentTime(cfg, now)

	proxy := services.NewCallProxyService(nil, logger.NewDiscard())
	return proxy.Reshape(dto.CallRequest{CallConfig: cfg})
}
