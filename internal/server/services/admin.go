package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/server/auth"
	"github.com/dmitrijs2005/failvault/internal/server/config"
)

// AdminService exchanges a wallet-signed login message for an admin access
// token.
type AdminService struct {
	adminAddress string
	jwtSecret    []byte
	validity     time.Duration
	maxAge       time.Duration
	now          func() time.Time
}

func NewAdminService(cfg *config.Config) *AdminService {
	return &AdminService{
		adminAddress: cfg.AdminAddress,
		jwtSecret:    []byte(cfg.SecretKey),
		validity:     cfg.AdminTokenValidity,
		maxAge:       cfg.ChallengeMaxAge,
		now:          time.Now,
	}
}

// IssueToken verifies that message was produced by common.LoginMessage for
// the configured admin, is recent, and was signed by that account.
func (s *AdminService) IssueToken(ctx context.Context, address, message, signature string) (string, error) {
	if !strings.EqualFold(address, s.adminAddress) {
		return "", common.ErrorForbidden
	}

	claimed, issued, err := common.ParseLoginMessage(message)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(claimed, address) {
		return "", fmt.Errorf("%w: message names another account", common.ErrBadSignature)
	}

	age := s.now().Sub(issued)
	if age > s.maxAge || age < -s.maxAge {
		return "", common.ErrStaleChallenge
	}

	signer, err := auth.RecoverSigner(message, signature)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(signer.Hex(), s.adminAddress) {
		return "", fmt.Errorf("%w: signed by %s", common.ErrBadSignature, signer.Hex())
	}

	return auth.GenerateAdminToken(signer.Hex(), s.jwtSecret, s.validity)
}
