package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/engine"
)

const (
	greeting = "Hallo. Wie geht es dir?"
	exitHint = "(Tippe 'exit' zum Beenden)"
	farewell = "Auf Wiedersehen."
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long:  "Start an interactive conversation. An empty line or 'exit' ends it.",
		Run:   runChat,
	}

	cmd.Flags().StringP("rules", "r", "", "Rule file (json or yaml); overrides the stored set")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		rulesPath = cfg.Rules
	}

	e, err := newEngine(cmd, rulesPath)
	if err != nil {
		exitErr("load rules", err)
	}

	if err := chat(cmd.InOrStdin(), cmd.OutOrStdout(), e); err != nil {
		exitErr("chat", err)
	}
}

// chat runs the read/reply loop until an empty line, "exit" or EOF.
func chat(in io.Reader, out io.Writer, e *engine.Engine) error {
	r := lipgloss.NewRenderer(out)
	eliza := r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Render("ELIZA:")
	you := r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Render("DU:")
	hint := r.NewStyle().Faint(true).Render(exitHint)

	fmt.Fprintf(out, "%s %s\n%s\n\n", eliza, greeting, hint)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s ", you)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.EqualFold(strings.TrimSpace(line), "exit") {
			break
		}

		reply := e.Respond(line)
		fmt.Fprintf(out, "%s %s\n", eliza, reply)
		logger.Debug("turn", zap.String("input", line), zap.Any("memory", e.Memory()))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s %s\n", eliza, farewell)
	return nil
}
