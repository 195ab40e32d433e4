package push

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks a yes/no question. Anything but y or yes, including EOF, is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(out)
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
