package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/config"
)

// NotificationService delivers push notifications through the push gateway.
// Disabled (all sends become no-ops) when no gateway token is configured,
// so local development never needs gateway credentials.
type NotificationService struct {
	gatewayURL string
	token      string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg config.PushConfig) *NotificationService {
	return &NotificationService{
		gatewayURL: cfg.GatewayURL,
		token:      cfg.Token,
		enabled:    cfg.Token != "",
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// pushMessage is the gateway request payload
type pushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// sendPush posts one message to the gateway. Delivery is best effort:
// failures are logged, never propagated into the transaction that
// triggered them.
func (s *NotificationService) sendPush(pushToken, title, body string) error {
	if !s.enabled || pushToken == "" {
		return nil
	}

	payload, err := json.Marshal(pushMessage{
		To:    pushToken,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.gatewayURL, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Push delivery failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("⚠️ Push gateway returned %d", resp.StatusCode)
	}

	return nil
}

// SendVerificationCode delivers a one-time code
func (s *NotificationService) SendVerificationCode(pushToken, code, purpose string) {
	title := "🔐 Verification code"
	if purpose == models.ChallengePurposePasswordReset {
		title = "🔐 Password reset code"
	}

	s.sendPush(pushToken, title, fmt.Sprintf("Your code is %s. It expires in %d minutes.",
		code, int(models.ChallengeTTL.Minutes())))
}

// NotifyTransferReceived notifies the receiver of an incoming transfer
func (s *NotificationService) NotifyTransferReceived(receiver *models.Customer, senderName string, transfer *models.FundsTransfer) {
	unit := "THB"
	if transfer.Kind == models.TransferKindPoints {
		unit = "points"
	}

	s.sendPush(receiver.PushToken,
		"💸 Transfer received",
		fmt.Sprintf("%s sent you %.2f %s", senderName, transfer.Amount, unit),
	)
}

// NotifyTopUp notifies a customer their wallet was topped up
func (s *NotificationService) NotifyTopUp(customer *models.Customer, topUp *models.TopUp) {
	s.sendPush(customer.PushToken,
		"💰 Top-up successful",
		fmt.Sprintf("%.2f THB added to your wallet via %s", topUp.Amount, topUp.Method),
	)
}

// NotifyFuelSale notifies a customer of a settled fuel purchase
func (s *NotificationService) NotifyFuelSale(customer *models.Customer, pumpName string, sale *models.FuelSale, earnedPoints int) {
	body := fmt.Sprintf("%.2f THB of %s at %s", sale.Amount, sale.FuelType, pumpName)
	if earnedPoints > 0 {
		body += fmt.Sprintf(" (+%d points)", earnedPoints)
	}

	s.sendPush(customer.PushToken, "⛽ Fuel purchase", body)
}

// NotifyLoyaltyRedeemed notifies a customer their points were converted
func (s *NotificationService) NotifyLoyaltyRedeemed(customer *models.Customer, pumpName string, credited float64) {
	s.sendPush(customer.PushToken,
		"🎁 Points redeemed",
		fmt.Sprintf("%.2f THB credited from your points at %s", credited, pumpName),
	)
}
