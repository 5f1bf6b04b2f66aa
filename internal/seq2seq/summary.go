package seq2seq

import (
	"fmt"
	"io"

	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
)

// Summary prints one line per parameter tensor and the total count.
func (m *Model) Summary(w io.Writer) {
	fmt.Fprintln(w, "Model: Seq2Seq")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-40s %-10s\n", "Param", "Size")
	fmt.Fprintln(w, "=================================================================")

	params := m.Params()
	for _, p := range params {
		fmt.Fprintf(w, "%-40s %-10d\n", p.Name, p.Size())
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", layer.CountParams(params))
	fmt.Fprintln(w, "_________________________________________________________________")
}
