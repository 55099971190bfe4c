package forecast

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/aouyang1/go-weibull-forecaster/forecast/util"
	"github.com/aouyang1/go-weibull-forecaster/weibull"
)

// Model is a reporting snapshot of a fitted forecast. It is not used to restore a forecast.
type Model struct {
	Options    *options.Options `json:"options"`
	Initial    weibull.Params   `json:"initial_guess"`
	Params     weibull.Params   `json:"params"`
	Iterations int              `json:"iterations"`
	Evals      int              `json:"function_evaluations"`
	InitialSSR float64          `json:"initial_sum_squared_residuals"`
	SSR        float64          `json:"sum_squared_residuals"`
	Scores     *Scores          `json:"scores"`
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}

	if m.Options != nil {
		if err := m.Options.TablePrint(w, prefix, indent, 1); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sIterations: %d    Evaluations: %d\n",
		prefix, util.IndentExpand(indent, 1), m.Iterations, m.Evals); err != nil {
		return err
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, util.IndentExpand(indent, 1),
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}

	return m.paramsTablePrint(w, prefix, indent, 0)
}

func (m Model) paramsTablePrint(wr io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(wr, "%s%sParameters:\n", prefix, util.IndentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(wr, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sName\tInitial\tFitted\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	rows := []struct {
		name    string
		initial float64
		fitted  float64
	}{
		{"A", m.Initial.A, m.Params.A},
		{"beta", m.Initial.Beta, m.Params.Beta},
		{"eta", m.Initial.Eta, m.Params.Eta},
		{"SSR", m.InitialSSR, m.SSR},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.3f\t%.3f\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			r.name, r.initial, r.fitted); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
