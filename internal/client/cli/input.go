package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetTextDefault is GetSimpleText with a pre-filled value: an empty answer
// keeps def and a single "-" clears it.
func GetTextDefault(reader *bufio.Reader, prompt, def string, w io.Writer) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	v, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	switch v {
	case "":
		return def, nil
	case "-":
		return "", nil
	}
	return v, nil
}

// GetPassword prints prompt to w and reads a secret from the user's
// terminal without echo. A newline is printed after the read to keep the
// UI tidy.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ReadBillForm prompts for every bill field, offering the values of def as
// defaults. When keepBillNo is set the bill number is taken from def
// without asking.
func ReadBillForm(reader *bufio.Reader, w io.Writer, def models.BillInput, keepBillNo bool) (models.BillInput, error) {
	in := def
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Bill number", &in.BillNo},
		{"Customer name", &in.Name},
		{"Billed amount", &in.BilledAmount},
		{"Billed date (YYYY-MM-DD)", &in.BilledDate},
		{"Paid (Paid/Unpaid)", &in.PaidStatus},
		{"Paid amount", &in.PaidAmount},
		{"Paid date (YYYY-MM-DD, empty if unpaid)", &in.PaidDate},
	}
	if keepBillNo {
		fields = fields[1:]
	}
	for _, f := range fields {
		v, err := GetTextDefault(reader, f.prompt, *f.dst, w)
		if err != nil {
			return models.BillInput{}, fmt.Errorf("read %s: %w", strings.ToLower(f.prompt), err)
		}
		*f.dst = v
	}
	return in, nil
}
