package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	console      *ServerInstance
	extra        *ServerInstance
	response     *http.Response
	responseBody []byte
	authToken    string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc, console: tc.Console}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.extra != nil {
			s.extra.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a rights console is running$`, s.aRightsConsoleIsRunning)
	sc.Step(`^a read-only rights console is running$`, s.aReadOnlyRightsConsoleIsRunning)
	sc.Step(`^the following menus exist:$`, s.theFollowingMenusExist)
	sc.Step(`^a role "([^"]*)" with id (\d+)$`, s.aRoleWithID)
	sc.Step(`^role (\d+) grants "([^"]*)" on menu (\d+)$`, s.roleGrantsOnMenu)
	sc.Step(`^a user "([^"]*)" with id (\d+) and role (\d+)$`, s.aUserWithIDAndRole)
	sc.Step(`^user (\d+) overrides "([^"]*)" to (true|false) on menu (\d+)$`, s.userOverridesOnMenu)

	// Request steps
	sc.Step(`^I (GET|POST|PUT|DELETE) "([^"]*)"$`, s.iRequest)
	sc.Step(`^I apply the following rights document:$`, s.iApplyTheFollowingRightsDocument)
	sc.Step(`^I validate the following rights document:$`, s.iValidateTheFollowingRightsDocument)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Step(`^the customized count should be (\d+)$`, s.theCustomizedCountShouldBe)
	sc.Step(`^menu (\d+) should have effective "([^"]*)" (true|false)$`, s.menuShouldHaveEffective)
	sc.Step(`^menu (\d+) should inherit "([^"]*)"$`, s.menuShouldInherit)
	sc.Step(`^the response should indicate dry-run mode$`, s.theResponseShouldIndicateDryRunMode)

	// Database steps
	sc.Step(`^user (\d+) should have (\d+) stored overrides?$`, s.userShouldHaveStoredOverrides)
	sc.Step(`^role (\d+) should have (\d+) assigned menus?$`, s.roleShouldHaveAssignedMenus)

	s.registerActorSteps(sc)
}

// Background steps

func (s *StepsContext) aRightsConsoleIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aReadOnlyRightsConsoleIsRunning() error {
	instance, err := StartServer(s.tc, ServerConfig{ReadOnly: true})
	if err != nil {
		return err
	}
	s.extra = instance
	s.console = instance
	return nil
}

func (s *StepsContext) theFollowingMenusExist(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("menu table needs a header and at least one row")
	}
	header := table.Rows[0].Cells
	for _, row := range table.Rows[1:] {
		values := map[string]string{}
		for i, cell := range row.Cells {
			values[header[i].Value] = cell.Value
		}

		var parentID interface{}
		if p := values["parent"]; p != "" {
			parentID = p
		}
		order, _ := strconv.Atoi(values["order"])
		if err := s.tc.DB.Exec(
			`INSERT INTO menus (id, name, path, order_index, parent_id) VALUES (?, ?, ?, ?, ?)`,
			values["id"], values["name"], values["path"], order, parentID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) aRoleWithID(name string, id int) error {
	if err := s.tc.DB.Exec(`INSERT INTO roles (id, name, display_name) VALUES (?, ?, ?)`, id, name, name).Error; err != nil {
		return err
	}
	return s.do("DELETE", fmt.Sprintf("/roles/%d/menus", id), nil)
}

func (s *StepsContext) roleGrantsOnMenu(roleID int, actions string, menuID int) error {
	grant := permission.Grant{}
	for _, name := range strings.Split(actions, ",") {
		a, err := permission.ActionString(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		grant = grant.With(a, true)
	}
	return s.tc.DB.Exec(
		`INSERT INTO role_menus (role_id, menu_id, can_read, can_write, can_update, can_delete) VALUES (?, ?, ?, ?, ?, ?)`,
		roleID, menuID, grant.Read, grant.Write, grant.Update, grant.Delete,
	).Error
}

func (s *StepsContext) aUserWithIDAndRole(username string, id, roleID int) error {
	if err := s.tc.DB.Exec(
		`INSERT INTO users (id, username, email, name, role_id) VALUES (?, ?, ?, ?, ?)`,
		id, username, username+"@example.com", username, roleID,
	).Error; err != nil {
		return err
	}
	// Drop any session a previous scenario left for this id
	return s.do("DELETE", fmt.Sprintf("/users/%d/rights", id), nil)
}

func (s *StepsContext) userOverridesOnMenu(userID int, action, value string, menuID int) error {
	a, err := permission.ActionString(action)
	if err != nil {
		return err
	}
	column := "can_" + a.String()
	return s.tc.DB.Exec(
		`INSERT INTO rights_access (user_id, menu_id, `+column+`) VALUES (?, ?, ?)
		ON CONFLICT (user_id, menu_id) DO UPDATE SET `+column+` = EXCLUDED.`+column,
		userID, menuID, value == "true",
	).Error
}

// Request steps

func (s *StepsContext) do(method, path string, body []byte) error {
	req, err := http.NewRequest(method, s.console.ServerURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-yaml")
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iRequest(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iApplyTheFollowingRightsDocument(doc *godog.DocString) error {
	return s.do("POST", "/policies", []byte(doc.Content))
}

func (s *StepsContext) iValidateTheFollowingRightsDocument(doc *godog.DocString) error {
	return s.do("POST", "/policies?dry_run=true", []byte(doc.Content))
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(string(s.responseBody), expected) {
		return fmt.Errorf("expected body to contain %q, got %q", expected, string(s.responseBody))
	}
	return nil
}

type rightsResponse struct {
	Rows            []permission.Row `json:"rows"`
	Row             *permission.Row  `json:"row"`
	CustomizedCount int              `json:"customized_count"`
}

func (s *StepsContext) rights() (*rightsResponse, error) {
	var resp rightsResponse
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Row != nil {
		resp.Rows = append(resp.Rows, *resp.Row)
	}
	return &resp, nil
}

func (s *StepsContext) row(menuID int) (permission.Row, error) {
	resp, err := s.rights()
	if err != nil {
		return permission.Row{}, err
	}
	for _, r := range resp.Rows {
		if r.MenuID == uint(menuID) {
			return r, nil
		}
	}
	return permission.Row{}, fmt.Errorf("menu %d not in response", menuID)
}

func (s *StepsContext) theCustomizedCountShouldBe(expected int) error {
	resp, err := s.rights()
	if err != nil {
		return err
	}
	if resp.CustomizedCount != expected {
		return fmt.Errorf("expected %d customized rows, got %d", expected, resp.CustomizedCount)
	}
	return nil
}

func (s *StepsContext) menuShouldHaveEffective(menuID int, action, value string) error {
	r, err := s.row(menuID)
	if err != nil {
		return err
	}
	a, err := permission.ActionString(action)
	if err != nil {
		return err
	}
	if got := r.Effective().Get(a); got != (value == "true") {
		return fmt.Errorf("expected effective %s of menu %d to be %s, got %v", action, menuID, value, got)
	}
	return nil
}

func (s *StepsContext) menuShouldInherit(menuID int, action string) error {
	r, err := s.row(menuID)
	if err != nil {
		return err
	}
	a, err := permission.ActionString(action)
	if err != nil {
		return err
	}
	if !r.IsInherited(a) {
		return fmt.Errorf("expected %s of menu %d to inherit the role default", action, menuID)
	}
	return nil
}

func (s *StepsContext) theResponseShouldIndicateDryRunMode() error {
	var result map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	dryRun, ok := result["dry_run"].(bool)
	if !ok || !dryRun {
		return fmt.Errorf("expected dry_run=true in response")
	}
	return nil
}

// Database steps

func (s *StepsContext) userShouldHaveStoredOverrides(userID, expected int) error {
	var count int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM rights_access WHERE user_id = ? AND deleted_at IS NULL`, userID).Scan(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d stored overrides for user %d, got %d", expected, userID, count)
	}
	return nil
}

func (s *StepsContext) roleShouldHaveAssignedMenus(roleID, expected int) error {
	var count int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM role_menus WHERE role_id = ?`, roleID).Scan(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d menus for role %d, got %d", expected, roleID, count)
	}
	return nil
}
