package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ayoubd/filevault"
	"github.com/ayoubd/filevault/config"
	"github.com/ayoubd/filevault/database"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a user account",
	Long: `Register a user account interactively.

You will be prompted for an email address and a password. The password is
stored as a salted PBKDF2 digest; the plain text never touches the database.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repos, dbCleanup, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbCleanup()

	emailPrompt := promptui.Prompt{
		Label: "Email",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("email is required")
			}
			if !strings.Contains(input, "@") {
				return errors.New("email must contain @")
			}
			return nil
		},
	}
	email, err := emailPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	confirmPrompt := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
	}
	confirm, err := confirmPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	if confirm != password {
		return errors.New("passwords do not match")
	}

	sessions := filevault.NewSessionManager(repos.Users, nil, filevault.SessionConfig{})

	user, err := sessions.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, filevault.ErrBadRequest) {
			return fmt.Errorf("email already registered: %s", email)
		}
		return fmt.Errorf("register user: %w", err)
	}

	fmt.Printf("User '%s' registered with id %s.\n", user.Email, user.ID)
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
