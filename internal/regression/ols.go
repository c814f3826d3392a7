package regression

import (
	stderrors "errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"fuelbreak/internal/errors"
)

var (
	// ErrSingular is returned when the design matrix does not have full column rank.
	ErrSingular = stderrors.New("design matrix is singular")
	// ErrNoResidualDF is returned when there are no more observations than parameters.
	ErrNoResidualDF = stderrors.New("no residual degrees of freedom")
)

// maxCondition bounds the condition number of the column-equilibrated
// normal matrix. Above it the design is treated as rank deficient.
const maxCondition = 1e12

// Coefficient is one row of the coefficient table.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TValue   float64 `json:"t"`
	PValue   float64 `json:"p_value"`
	CILower  float64 `json:"ci_lower"` // 2.5%
	CIUpper  float64 `json:"ci_upper"` // 97.5%
}

// Model is a fitted ordinary least squares regression.
type Model struct {
	Target       string        `json:"target"`
	Coefficients []Coefficient `json:"coefficients"`

	RSquared       float64 `json:"r_squared"`
	AdjRSquared    float64 `json:"adj_r_squared"`
	FStatistic     float64 `json:"f_statistic"`
	FPValue        float64 `json:"f_p_value"`
	ResidualStdErr float64 `json:"residual_std_err"`
	SSR            float64 `json:"ssr"`

	N       int `json:"n"`
	DFModel int `json:"df_model"`
	DFResid int `json:"df_resid"`

	Residuals []float64 `json:"-"`
}

// Coefficient returns the coefficient row with the given name.
func (m *Model) Coefficient(name string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Fit estimates y = X·β + ε by least squares. Column 0 of X must be the
// intercept; the remaining columns are the regressors named in names.
// The normal equations are solved by Cholesky on the column-equilibrated
// matrix, so a rank-deficient design fails with ErrSingular.
func Fit(y []float64, x *mat.Dense, names []string) (*Model, error) {
	if x == nil {
		return nil, errors.NewAppValidationError("design matrix is nil")
	}
	n, p := x.Dims()
	if len(y) != n {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("response has %d rows, design has %d", len(y), n))
	}
	if len(names) != p {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("%d names for %d design columns", len(names), p))
	}
	if n <= p {
		return nil, errors.NewNumericalError(
			fmt.Sprintf("%d observations for %d parameters", n, p), ErrNoResidualDF)
	}

	// Equilibrate columns to unit norm before factorizing
	norms := make([]float64, p)
	for j := 0; j < p; j++ {
		norms[j] = floats.Norm(mat.Col(nil, j, x), 2)
		if norms[j] == 0 {
			return nil, errors.NewNumericalError(
				fmt.Sprintf("column %s is all zeros", names[j]), ErrSingular).
				WithContext("column", names[j])
		}
	}
	var xs mat.Dense
	xs.Apply(func(_, j int, v float64) float64 { return v / norms[j] }, x)

	var xtx mat.SymDense
	xtx.SymOuterK(1, xs.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, errors.NewNumericalError("cholesky factorization failed", ErrSingular)
	}
	if cond := chol.Cond(); cond > maxCondition || math.IsNaN(cond) {
		return nil, errors.NewNumericalError(
			fmt.Sprintf("normal matrix condition number %.3g", cond), ErrSingular)
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(xs.T(), yv)

	var bs mat.VecDense
	if err := chol.SolveVecTo(&bs, &xty); err != nil {
		return nil, errors.NewNumericalError("solving normal equations", fmt.Errorf("%w: %v", ErrSingular, err))
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, errors.NewNumericalError("inverting normal matrix", fmt.Errorf("%w: %v", ErrSingular, err))
	}

	beta := make([]float64, p)
	for j := range beta {
		beta[j] = bs.AtVec(j) / norms[j]
	}

	var fitted mat.VecDense
	fitted.MulVec(x, mat.NewVecDense(p, beta))

	residuals := make([]float64, n)
	for i := range residuals {
		residuals[i] = y[i] - fitted.AtVec(i)
	}

	ssr := floats.Dot(residuals, residuals)
	mean := floats.Sum(y) / float64(n)
	var sst float64
	for _, v := range y {
		sst += (v - mean) * (v - mean)
	}

	dfModel := p - 1
	dfResid := n - p
	sigma2 := ssr / float64(dfResid)

	m := &Model{
		N:              n,
		DFModel:        dfModel,
		DFResid:        dfResid,
		SSR:            ssr,
		ResidualStdErr: math.Sqrt(sigma2),
		Residuals:      residuals,
	}

	m.RSquared = 1 - ssr/sst
	m.AdjRSquared = 1 - (1-m.RSquared)*float64(n-1)/float64(dfResid)

	if dfModel > 0 {
		m.FStatistic = ((sst - ssr) / float64(dfModel)) / sigma2
		fdist := distuv.F{D1: float64(dfModel), D2: float64(dfResid)}
		m.FPValue = fdist.Survival(m.FStatistic)
	} else {
		m.FStatistic = math.NaN()
		m.FPValue = math.NaN()
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dfResid)}
	crit := tdist.Quantile(0.975)

	m.Coefficients = make([]Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(sigma2*inv.At(j, j)) / norms[j]
		t := beta[j] / se
		m.Coefficients[j] = Coefficient{
			Name:     names[j],
			Estimate: beta[j],
			StdErr:   se,
			TValue:   t,
			PValue:   2 * tdist.Survival(math.Abs(t)),
			CILower:  beta[j] - crit*se,
			CIUpper:  beta[j] + crit*se,
		}
	}

	return m, nil
}
