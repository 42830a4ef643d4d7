package tui

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
)

// ErrInteractiveDisabled is returned when prompts are disabled via
// ARBOR_TEST_NO_INTERACTIVE.
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (ARBOR_TEST_NO_INTERACTIVE is set)")

func checkInteractiveAllowed() error {
	if os.Getenv("ARBOR_TEST_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	return nil
}

// PromptConfirm asks a yes/no question.
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	var answer bool
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, fmt.Errorf("canceled")
	}
	return answer, nil
}

// PromptInput asks for a line of text.
func PromptInput(message, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", fmt.Errorf("canceled")
	}
	return answer, nil
}

// PromptSelect asks the user to pick one of the options.
func PromptSelect(message string, options []string, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	var answer string
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", fmt.Errorf("canceled")
	}
	return answer, nil
}
