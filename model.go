package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-weibull-forecaster/forecast"
)

// Model summarizes a fit: how many observations were given, how many were fit after
// dropping zero measures and the resulting forecast model.
type Model struct {
	Options      *Options       `json:"options"`
	Observations int            `json:"observations"`
	Filtered     int            `json:"filtered_observations"`
	ForecastGap  int            `json:"forecast_gap"`
	Horizon      int            `json:"horizon"`
	Forecast     forecast.Model `json:"forecast_model"`

	// ResidualOutliers are the observed times whose fit residual lies outside the Tukey fences
	ResidualOutliers []float64 `json:"residual_outliers,omitempty"`
}

// TablePrint writes a human readable summary of the fit
func (m Model) TablePrint(w io.Writer) error {
	prefix := ""
	indent := "  "

	if _, err := fmt.Fprintf(w, "Observations: %d    Fit: %d    Forecast Gap: %d    Horizon: %d\n",
		m.Observations, m.Filtered, m.ForecastGap, m.Horizon); err != nil {
		return err
	}
	if len(m.ResidualOutliers) > 0 {
		if _, err := fmt.Fprintf(w, "Residual Outliers: %v\n", m.ResidualOutliers); err != nil {
			return err
		}
	}
	if err := m.Forecast.TablePrint(w, prefix, indent); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
