package integration

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

// The console reads the actor from the token without verifying it, so any
// key will do
var testSigningKey = []byte("integration-test-key")

func (s *StepsContext) registerActorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)
	sc.Step(`^I am signed in with an expired token$`, s.iAmSignedInWithAnExpiredToken)
	sc.Step(`^an audit record "([^"]*)" on ([a-z_]+) "([^"]*)" by "([^"]*)" should be recorded$`, s.anAuditRecordShouldBeRecorded)
}

func (s *StepsContext) signToken(claims jwt.MapClaims) error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmSignedInAs(username string) error {
	return s.signToken(jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
}

func (s *StepsContext) iAmSignedInWithAnExpiredToken() error {
	return s.signToken(jwt.MapClaims{
		"username": "expired",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
}

func (s *StepsContext) anAuditRecordShouldBeRecorded(action, resourceType, resourceID, username string) error {
	var count int64
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		err := s.tc.DB.Raw(
			`SELECT COUNT(*) FROM audit_logs WHERE action = ? AND resource_type = ? AND resource_id = ? AND username = ?`,
			action, resourceType, resourceID, username,
		).Scan(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	var recorded []string
	_ = s.tc.DB.Raw(`SELECT action || ' ' || resource_type || ' ' || COALESCE(resource_id, '') || ' ' || COALESCE(username, '') FROM audit_logs ORDER BY id`).Scan(&recorded).Error
	return fmt.Errorf("audit record %s on %s %q by %q not recorded, have %q", action, resourceType, resourceID, username, recorded)
}
