package services

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	// FirebaseApp is the Firebase app instance
	FirebaseApp *firebase.App
	// MessagingClient is the Firebase Cloud Messaging client
	MessagingClient *messaging.Client
)

// InitFirebase initializes Firebase Admin SDK
func InitFirebase() error {
	ctx := context.Background()

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return nil
	}

	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting messaging client: %v", err)
	}

	FirebaseApp = app
	MessagingClient = client

	log.Println("Firebase Cloud Messaging initialized successfully")
	return nil
}

// SendPushNotification sends one FCM message to a registration token.
// Returns silently when messaging is not configured.
func SendPushNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if MessagingClient == nil {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "freightbid_default",
			},
		},
	}

	if _, err := MessagingClient.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send push notification: %v", err)
	}
	return nil
}

// SendPushToTokens fans a notification out to many tokens, best effort.
func SendPushToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) {
	for _, token := range tokens {
		if err := SendPushNotification(ctx, token, title, body, data); err != nil {
			log.Printf("Push to token failed: %v", err)
		}
	}
}
