package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/editor"
)

var errReadOnly = errors.New("console is read-only")

// userResetCmd represents the user reset command
var userResetCmd = &cobra.Command{
	Use:   "reset <user-id> [menu-id...]",
	Short: "Reset overrides of a user to the role defaults",
	Long: `Reset overrides of a user so the listed menus inherit the role defaults
again, then save. Without menu ids every override of the user is reset.

Example:
  rightsctl user reset 12 7 9
  rightsctl user reset 12`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		userID, err := parseID("user id", args[0])
		if err != nil {
			fail("%v", err)
		}
		menuIDs := make([]uint, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := parseID("menu id", arg)
			if err != nil {
				fail("%v", err)
			}
			menuIDs = append(menuIDs, id)
		}

		if err := resetUserRights(userID, menuIDs); err != nil {
			fail("Failed to reset rights: %v", err)
		}
	},
}

// userClearCmd represents the user clear command
var userClearCmd = &cobra.Command{
	Use:   "clear <user-id>",
	Short: "Delete every stored override of a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		userID, err := parseID("user id", args[0])
		if err != nil {
			fail("%v", err)
		}
		if err := clearUserRights(userID); err != nil {
			fail("Failed to clear rights: %v", err)
		}
	},
}

func init() {
	userCmd.AddCommand(userResetCmd)
	userCmd.AddCommand(userClearCmd)
}

func resetUserRights(userID uint, menuIDs []uint) error {
	cfg, _, b, err := setup()
	if err != nil {
		return err
	}
	if cfg.ReadOnly {
		return errReadOnly
	}
	ctx, cancel := commandContext()
	defer cancel()

	e, err := editor.LoadUserRights(ctx, b, userID)
	if err != nil {
		return err
	}

	table := e.Table()
	if len(menuIDs) == 0 {
		for _, r := range table.Customized() {
			menuIDs = append(menuIDs, r.MenuID)
		}
	}
	for _, menuID := range menuIDs {
		row, ok := table.Row(menuID)
		if !ok {
			return fmt.Errorf("menu %d not found", menuID)
		}
		if row.IsCustomized() && table.Reset(menuID) {
			audit.Log(audit.OverrideEvent{Origin: cliOrigin(), UserID: userID, MenuID: menuID, Before: row.Override})
		}
	}

	payload := e.Payload()
	saved, err := e.Save(ctx)
	event := saveEvent(audit.SaveUserRights, userID, len(payload), err)
	event.Entries = payload
	audit.Log(event)
	if err != nil {
		return err
	}

	fmt.Printf("Reset %d menu(s) of user %d, %d override(s) remain\n", len(menuIDs), userID, len(saved))
	return nil
}

func clearUserRights(userID uint) error {
	cfg, _, b, err := setup()
	if err != nil {
		return err
	}
	if cfg.ReadOnly {
		return errReadOnly
	}
	ctx, cancel := commandContext()
	defer cancel()

	e, err := editor.LoadUserRights(ctx, b, userID)
	if err != nil {
		return err
	}
	err = e.Clear(ctx)
	audit.Log(saveEvent(audit.ClearUserRights, userID, 0, err))
	if err != nil {
		return err
	}

	fmt.Printf("Cleared every override of user %d\n", userID)
	return nil
}

func saveEvent(kind audit.SaveKind, target uint, count int, err error) audit.SaveEvent {
	event := audit.SaveEvent{
		Origin:  cliOrigin(),
		Kind:    kind,
		Target:  target,
		Count:   count,
		Success: err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	return event
}
