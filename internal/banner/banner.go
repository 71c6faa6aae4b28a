package banner

import (
	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Bold(true)

	ascii := `
   _____            __        ____
  / ___/_________ _/ /__  ____/ /__  ____ ___  ____
  \__ \/ ___/ __ '/ / _ \/ __  / _ \/ __ '__ \/ __ \
 ___/ / /__/ /_/ / /  __/ /_/ /  __/ / / / / / /_/ /
/____/\___/\__,_/_/\___/\__,_/\___/_/ /_/ /_/\____/`

	return "\n" + style.Render(ascii) + "\n"
}
