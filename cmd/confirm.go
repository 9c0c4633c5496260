package cmd

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type confirmFunc func(cmd *cobra.Command, title string, description string) (bool, error)

func huhConfirm(cmd *cobra.Command, title string, description string) (bool, error) {
	confirmed := false

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		),
	).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.ErrOrStderr()).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return confirmed, nil
}
