package fcm

import (
	"context"
	"log"
)

// newFirebaseGateway is swapped in tests
var newFirebaseGateway = func(ctx context.Context, credentialsFile string) (Gateway, error) {
	return NewFirebaseGateway(ctx, credentialsFile)
}

// SelectGateway prefers the Admin SDK, falls back to the legacy server key,
// and returns nil when neither is usable so delivery is disabled.
func SelectGateway(ctx context.Context, credentialsFile, serverKey string) Gateway {
	if credentialsFile != "" {
		gateway, err := newFirebaseGateway(ctx, credentialsFile)
		if err == nil {
			return gateway
		}
		log.Printf("[WARN] Failed to initialize Firebase gateway: %v", err)
	}

	if serverKey != "" {
		log.Println("[FCM] Using legacy HTTP gateway")
		return NewLegacyHTTPGateway(serverKey)
	}

	log.Println("[WARN] No usable FCM credentials, push notifications disabled")
	return nil
}
