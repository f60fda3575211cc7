package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// receiptTTL bounds how long a settlement receipt stays verifiable.
const receiptTTL = 24 * time.Hour

// ReceiptService issues HS256-signed settlement receipts so game clients can
// hand a verifiable result summary to lobby UIs and spectators. Receipts are
// a convenience on top of settlement, never part of its correctness.
type ReceiptService struct {
	secret string
	issuer string
}

// NewReceiptService constructs a receipt signer.
func NewReceiptService(secret, issuer string) *ReceiptService {
	return &ReceiptService{secret: secret, issuer: issuer}
}

// Issue signs a receipt token for the given settlement.
func (s *ReceiptService) Issue(result *SettlementResult) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("receipt config is incomplete")
	}
	if result == nil {
		return "", fmt.Errorf("settlement result is required")
	}

	payouts := make([]map[string]interface{}, 0, len(result.Distribution.Payouts))
	for _, p := range result.Distribution.Payouts {
		payouts = append(payouts, map[string]interface{}{
			"user_id": p.UserID,
			"amount":  p.Amount,
		})
	}
	var royaltyTotal int64
	for _, r := range result.Distribution.Royalties {
		royaltyTotal += r.Amount
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":        s.issuer,
		"iat":        now.Unix(),
		"exp":        now.Add(receiptTTL).Unix(),
		"pool_id":    result.PoolID,
		"asset":      result.Asset,
		"total_pool": result.TotalPool,
		"payouts":    payouts,
		"royalty":    royaltyTotal,
		"dust":       result.Distribution.Dust,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
