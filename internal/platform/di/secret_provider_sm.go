// internal/platform/di/secret_provider_sm.go
package di

import (
	"context"
	"log"
	"strings"

	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// resolveSendGridKey returns the SendGrid API key, preferring the
// environment and falling back to Secret Manager when
// SENDGRID_API_KEY_SECRET names a secret.
func (c *Container) resolveSendGridKey(ctx context.Context) string {
	if key := strings.TrimSpace(c.Config.SendGridAPIKey); key != "" {
		return key
	}

	secretID := strings.TrimSpace(c.Config.SendGridAPIKeySecret)
	if secretID == "" {
		return ""
	}
	if c.SecretManager == nil {
		log.Printf("[di] WARN: SENDGRID_API_KEY_SECRET set but Secret Manager client unavailable")
		return ""
	}

	name := "projects/" + c.Config.FirestoreProjectID + "/secrets/" + secretID + "/versions/latest"
	resp, err := c.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Printf("[di] WARN: AccessSecretVersion failed (%s): %v", name, err)
		return ""
	}
	if resp == nil || resp.Payload == nil {
		log.Printf("[di] WARN: empty secret payload (%s)", name)
		return ""
	}
	return strings.TrimSpace(string(resp.Payload.Data))
}
