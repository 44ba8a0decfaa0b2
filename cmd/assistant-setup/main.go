// Command assistant-setup pushes the booking tool schemas, system prompt,
// and webhook URL to the voice platform. Run once, or whenever the assistant
// configuration changes; it is not part of the runtime request path.
package main

import (
	"context"
	"time"

	"tablecall/config"
	"tablecall/services/vapi"
	"tablecall/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	if config.AppConfig.VapiPrivateKey == "" || config.AppConfig.VapiAssistantID == "" {
		logger.Sugar().Fatal("assistant-setup: VAPI_PRIVATE_KEY and VAPI_ASSISTANT_ID must be set")
	}

	client := vapi.NewClient(
		config.AppConfig.VapiBaseURL,
		config.AppConfig.VapiPrivateKey,
		config.AppConfig.VapiAssistantID,
		config.AppConfig.VapiPhoneNumberID,
		config.AppConfig.ServerBaseURL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Sugar().Infof("Updating assistant %s (server %s)",
		config.AppConfig.VapiAssistantID, config.AppConfig.ServerBaseURL)
	if err := client.UpdateAssistant(ctx); err != nil {
		logger.Sugar().Fatalf("assistant-setup: %v", err)
	}
	logger.Sugar().Info("Assistant updated successfully")
}
