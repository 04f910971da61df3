package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/pkg/backend/mock"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/estimator"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
	"github.com/spf13/cobra"
)

// EstimateOptions holds options for the estimate command.
type EstimateOptions struct {
	AnsatzFlags
	Operator   string
	Circuit    string
	Bindings   []string
	Method     string
	Allocation string
	Shots      int
	Total      int
	Exact      bool
}

// estimateResult is the JSON form of an estimate run.
type estimateResult struct {
	Operator   string    `json:"operator"`
	Method     string    `json:"method"`
	Allocation string    `json:"allocation"`
	Frames     int       `json:"frames"`
	Shots      []int     `json:"shots,omitempty"`
	Values     []float64 `json:"values"`
	Energy     float64   `json:"energy"`
	Jobs       []string  `json:"jobs,omitempty"`
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand() *cobra.Command {
	opts := &EstimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate operator expectation values on the mock backend",
		Long: `Estimate the expectation value of every term of a qubit operator on
the state prepared by a circuit or ansatz.

Terms are grouped into co-measureable frames; each frame is measured
after a basis change. Shots are spread uniformly or allocated to
minimize the estimator variance (--allocation optimal --total N).

The operator is read from a YAML file or given inline, e.g.
"0.5 [Z0 Z1] + 0.2 [X0] + 1".`,
		Example: `  leapq estimate --operator h2.yaml --circuit bell.yaml
  leapq estimate --operator "1 [Z0] + 0.5 [X0 X1]" --layers 2 --params 0.1,0.2,0.3,0.4
  leapq estimate --operator h2.yaml --circuit bell.yaml --allocation optimal --total 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "Operator YAML file or inline operator (required)")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "Circuit YAML file (default: ansatz)")
	cmd.Flags().StringVar(&opts.Script, "ansatz", "", "Starlark ansatz script (default: layered rotations)")
	cmd.Flags().StringArrayVarP(&opts.Bindings, "bind", "b", nil, "Bind a circuit symbol: name=value (repeatable)")
	cmd.Flags().StringVar(&opts.Method, "method", hamiltonian.MethodGreedySorted, "Term grouping: greedy, greedy-sorted")
	cmd.Flags().StringVar(&opts.Allocation, "allocation", string(estimator.AllocationUniform), "Shot allocation: uniform, optimal")
	cmd.Flags().IntVar(&opts.Shots, "shots", 0, "Shots per frame for uniform allocation (default: backend samples)")
	cmd.Flags().IntVar(&opts.Total, "total", 0, "Total shots for optimal allocation")
	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "Use exact expectation values from the simulator")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func runEstimate(cmd *cobra.Command, opts *EstimateOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()
	r := cc.Renderer

	op, err := loadOperator(opts.Operator)
	if err != nil {
		return err
	}
	c, err := estimateCircuit(cc, opts)
	if err != nil {
		return err
	}

	backend := mock.NewSimulator(mock.Config{
		NumSamples: cc.Cfg.Backend.Samples,
		Seed:       cc.Cfg.Backend.Seed,
		Logger:     cc.Logger,
	})
	var est estimator.Estimator = estimator.NewBasicEstimator(opts.Method, cc.Logger)
	if opts.Exact {
		est = estimator.ExactEstimator{}
	}

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	started := time.Now()
	values, err := est.EstimateExpectationValues(ctx, backend, c, op, estimator.Options{
		NSamples:      opts.Shots,
		NTotalSamples: opts.Total,
		Allocation:    estimator.ShotAllocation(strings.ToLower(opts.Allocation)),
	})
	energy := values.Sum()
	cc.Record(ctx, store, state.KindEstimate, opts.Method, op.String(), strconv.FormatFloat(energy, 'g', -1, 64), err, started)
	if err != nil {
		return err
	}

	res := estimateResult{
		Operator:   op.String(),
		Method:     opts.Method,
		Allocation: strings.ToLower(opts.Allocation),
		Values:     values.Values,
		Energy:     energy,
	}
	for _, job := range backend.Jobs() {
		res.Jobs = append(res.Jobs, job.ID.String())
		res.Shots = append(res.Shots, job.Shots...)
	}
	res.Frames = len(res.Shots)
	if opts.Exact {
		res.Method = "exact"
		res.Allocation = ""
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}
	rows := make([][]string, len(values.Values))
	for i, v := range values.Values {
		rows[i] = []string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', 8, 64)}
	}
	r.Table([]string{"#", "Expectation value"}, rows)
	if res.Frames > 0 {
		r.Printf("Frames: %d, shots: %v\n", res.Frames, res.Shots)
	}
	r.Printf("Energy: %s\n", strconv.FormatFloat(energy, 'g', 10, 64))
	return nil
}

// loadOperator reads an operator file, or parses the argument inline
// when it contains a Pauli term.
func loadOperator(arg string) (*hamiltonian.QubitOperator, error) {
	if strings.Contains(arg, "[") {
		return hamiltonian.ParseOperator(arg)
	}
	return hamiltonian.LoadOperatorFile(arg)
}

// estimateCircuit returns the bound state-preparation circuit.
func estimateCircuit(cc *CommandContext, opts *EstimateOptions) (*circuit.Circuit, error) {
	if opts.Circuit != "" && opts.Script != "" {
		return nil, fmt.Errorf("--circuit and --ansatz are mutually exclusive")
	}
	flagBindings, err := render.ParseBindings(opts.Bindings)
	if err != nil {
		return nil, err
	}

	if opts.Circuit != "" {
		c, err := circuit.LoadFile(opts.Circuit)
		if err != nil {
			return nil, err
		}
		return c.Bind(render.MergeBindings(cc.Cfg.Bindings, flagBindings))
	}

	a, err := opts.build(cc)
	if err != nil {
		return nil, err
	}
	n, err := a.NumberOfParams()
	if err != nil {
		return nil, err
	}
	params, err := opts.parameters(n)
	if err != nil {
		return nil, err
	}
	return a.ExecutableCircuit(params)
}
