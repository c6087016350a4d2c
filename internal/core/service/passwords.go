package service

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/suivipro/platform/internal/core/domain"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the user does not exist, at the same
// cost as real hashes.
func dummyHash(cost int) []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return h
}

type nopAudit struct{}

func (nopAudit) Publish(domain.AuditEvent) {}

type nopLimiter struct{}

func (nopLimiter) Blocked(context.Context, string) (bool, error) { return false, nil }
func (nopLimiter) RecordFailure(context.Context, string) error   { return nil }
func (nopLimiter) Reset(context.Context, string) error           { return nil }
