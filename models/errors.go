package models

import (
	"errors"
)

var (
	ErrNoOptions         = errors.New("no initialized model options")
	ErrTargetLenMismatch = errors.New("target length does not match training length")
	ErrNoModelFunc       = errors.New("no model function")
	ErrNoTrainingArray   = errors.New("no training array")
	ErrNoInitialGuess    = errors.New("no initial parameter guess")
	ErrUnknownSolver     = errors.New("unknown solver")

	// ErrFitDivergence is wrapped by every failure of a solver to produce a converged,
	// finite set of parameters.
	ErrFitDivergence     = errors.New("least squares fit did not converge")
	ErrMaxIterations     = errors.New("exceeded maximum iterations")
	ErrNonFiniteResidual = errors.New("non-finite residuals")
	ErrNonFiniteParams   = errors.New("non-finite parameters")
)
