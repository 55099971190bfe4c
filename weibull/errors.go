package weibull

import "errors"

var ErrParamLen = errors.New("invalid number of weibull parameters")
