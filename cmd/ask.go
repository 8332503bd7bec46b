package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	askPDF         string
	askQuestion    string
	askShowExcerpt bool
)

// askCmd runs the whole pipeline once.
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer one question about a PDF",
	Long:  `Extract the PDF, select the relevant sentences and print the answer.`,
	Args:  cobra.NoArgs,
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "Path to the PDF file")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "Question to ask")
	askCmd.Flags().BoolVar(&askShowExcerpt, "show-excerpt", false,
		"Print the excerpt sent along with the question")
	_ = askCmd.MarkFlagRequired("pdf")
	_ = askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(askPDF)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	sess := a.newSession()
	if _, err := sess.LoadDocument(filepath.Base(askPDF), data); err != nil {
		return err
	}

	ans, err := sess.Ask(cmd.Context(), askQuestion)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askShowExcerpt {
		fmt.Fprintf(out, "Excerpt:\n%s\n\n", ans.Excerpt)
	}
	if ans.LowConfidence {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no sentence in the document matched the question")
	}
	fmt.Fprintln(out, ans.Text)
	return nil
}
