package cmd

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

var flagYes bool

// confirm asks a yes/no question. --yes answers it up front.
func confirm(question string) bool {
	if flagYes {
		return true
	}

	p := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}

	_, err := p.Run()
	return err == nil
}

func promptLabel(question string) (string, error) {
	p := promptui.Prompt{
		Label: question,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("label cannot be empty")
			}
			return nil
		},
	}

	label, err := p.Run()
	if err != nil {
		return "", errors.New("input cancelled")
	}

	return strings.TrimSpace(label), nil
}
