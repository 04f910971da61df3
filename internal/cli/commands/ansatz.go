package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/pkg/ansatz"
	"github.com/leapstack-labs/leapq/pkg/ansatz/script"
	"github.com/leapstack-labs/leapq/pkg/backend/mock"
	"github.com/leapstack-labs/leapq/pkg/estimator"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
	"github.com/leapstack-labs/leapq/pkg/optimize"
	"github.com/spf13/cobra"
)

// Optimizer names accepted by --optimizer.
const (
	OptimizerRandom   = "random"
	OptimizerGradient = "gradient"
)

// AnsatzFlags selects and shapes an ansatz. Shared by ansatz and estimate.
type AnsatzFlags struct {
	Script string
	Qubits int
	Layers int
	Params string
}

func (f *AnsatzFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.Qubits, "qubits", "q", 2, "Number of qubits")
	cmd.Flags().IntVarP(&f.Layers, "layers", "l", 1, "Number of layers")
	cmd.Flags().StringVar(&f.Params, "params", "", "Comma-separated parameter values (default all zero)")
}

// build loads the script ansatz, or the layered rotations ansatz when no
// script is given.
func (f *AnsatzFlags) build(cc *CommandContext) (*ansatz.Base, error) {
	if f.Script == "" {
		return ansatz.NewLayeredRotations(f.Qubits, f.Layers)
	}
	return script.Load(f.Script, script.Config{
		Qubits: f.Qubits,
		Layers: f.Layers,
		Logger: cc.Logger,
	})
}

// parameters parses --params, defaulting to n zeros.
func (f *AnsatzFlags) parameters(n int) ([]float64, error) {
	if strings.TrimSpace(f.Params) == "" {
		return make([]float64, n), nil
	}
	parts := strings.Split(f.Params, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", p, err)
		}
		out[i] = v
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: ansatz has %d parameters, got %d", ansatz.ErrParameterCount, n, len(out))
	}
	return out, nil
}

// AnsatzOptions holds options for the ansatz command.
type AnsatzOptions struct {
	AnsatzFlags
	Operator     string
	Optimizer    string
	MaxIter      int
	LearningRate float64
	Exact        bool
}

// NewAnsatzCommand creates the ansatz command.
func NewAnsatzCommand() *cobra.Command {
	opts := &AnsatzOptions{}

	cmd := &cobra.Command{
		Use:   "ansatz [SCRIPT]",
		Short: "Build an ansatz circuit and optionally optimize it",
		Long: `Build a parametrized ansatz circuit and list its symbols.

SCRIPT is a Starlark file that assigns the global circuit using the
predeclared gate builtins, symbol(name), number_of_qubits and
number_of_layers. Without a script the layered rotations ansatz is used.

With --operator, the ansatz parameters are optimized to minimize the
estimated energy of the operator on the mock backend.`,
		Example: `  # Layered RY/CNOT ansatz on 3 qubits
  leapq ansatz --qubits 3 --layers 2

  # Scripted ansatz
  leapq ansatz hea.star --qubits 4

  # Minimize an operator's energy
  leapq ansatz --operator h2.yaml --optimizer gradient --max-iter 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Script = args[0]
			}
			return runAnsatz(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "Operator YAML file or inline operator to minimize")
	cmd.Flags().StringVar(&opts.Optimizer, "optimizer", OptimizerRandom, "Optimizer: random, gradient")
	cmd.Flags().IntVar(&opts.MaxIter, "max-iter", 10, "Maximum gradient descent iterations")
	cmd.Flags().Float64Var(&opts.LearningRate, "learning-rate", 0.1, "Gradient descent step size")
	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "Use exact expectation values from the simulator")

	_ = cmd.RegisterFlagCompletionFunc("optimizer", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OptimizerRandom, OptimizerGradient}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// ansatzSummary is the JSON form of an ansatz and optional optimization.
type ansatzSummary struct {
	Qubits       int       `json:"qubits"`
	Layers       int       `json:"layers"`
	Symbols      []string  `json:"symbols"`
	Circuit      string    `json:"circuit"`
	OptValue     *float64  `json:"opt_value,omitempty"`
	OptParams    []float64 `json:"opt_params,omitempty"`
	Evaluations  int       `json:"evaluations,omitempty"`
	EnergyTrace  []float64 `json:"energy_trace,omitempty"`
	OperatorFile string    `json:"operator,omitempty"`
}

func runAnsatz(cmd *cobra.Command, opts *AnsatzOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	a, err := opts.build(cc)
	if err != nil {
		return err
	}
	c, err := a.ParametrizedCircuit()
	if err != nil {
		return err
	}
	symbols, err := a.Symbols()
	if err != nil {
		return err
	}

	summary := ansatzSummary{
		Qubits:  a.NumberOfQubits(),
		Layers:  a.NumberOfLayers(),
		Symbols: symbols,
		Circuit: c.String(),
	}

	if opts.Operator != "" {
		res, err := optimizeAnsatz(cmd, cc, a, opts)
		if err != nil {
			return err
		}
		summary.OperatorFile = opts.Operator
		summary.OptValue = &res.OptValue
		summary.OptParams = res.OptParams
		summary.Evaluations = res.NFev
		for _, e := range res.History {
			summary.EnergyTrace = append(summary.EnergyTrace, e.Value)
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(summary)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(2, "Ansatz"))
		r.Println(output.FormatKeyValue("Qubits", strconv.Itoa(summary.Qubits)))
		r.Println(output.FormatKeyValue("Layers", strconv.Itoa(summary.Layers)))
		r.Println(output.FormatKeyValue("Symbols", strings.Join(symbols, ", ")))
		r.Println()
		r.Println(output.FormatCode("", summary.Circuit))
	default:
		r.Printf("%d qubits, %d layers, %d parameters: %s\n", summary.Qubits, summary.Layers, len(symbols), strings.Join(symbols, ", "))
		r.Println(summary.Circuit)
	}

	if summary.OptValue != nil && r.EffectiveMode() != output.ModeJSON {
		r.Println()
		rows := make([][]string, len(symbols))
		for i, s := range symbols {
			rows[i] = []string{s, strconv.FormatFloat(summary.OptParams[i], 'g', 8, 64)}
		}
		r.Table([]string{"Symbol", "Optimal value"}, rows)
		r.Printf("Energy: %s (%d evaluations)\n", strconv.FormatFloat(*summary.OptValue, 'g', 10, 64), summary.Evaluations)
	}
	return nil
}

func optimizeAnsatz(cmd *cobra.Command, cc *CommandContext, a *ansatz.Base, opts *AnsatzOptions) (optimize.Result, error) {
	op, err := loadOperator(opts.Operator)
	if err != nil {
		return optimize.Result{}, err
	}
	n, err := a.NumberOfParams()
	if err != nil {
		return optimize.Result{}, err
	}
	initial, err := opts.parameters(n)
	if err != nil {
		return optimize.Result{}, err
	}

	backend := mock.NewSimulator(mock.Config{
		NumSamples: cc.Cfg.Backend.Samples,
		Seed:       cc.Cfg.Backend.Seed,
		Logger:     cc.Logger,
	})
	var est estimator.Estimator = estimator.NewBasicEstimator(hamiltonian.MethodGreedySorted, cc.Logger)
	if opts.Exact {
		est = estimator.ExactEstimator{}
	}
	cost := &optimize.AnsatzCost{
		Ansatz:    a,
		Operator:  op,
		Estimator: est,
		Backend:   backend,
	}

	var opt optimize.Optimizer
	switch strings.ToLower(opts.Optimizer) {
	case OptimizerRandom:
		opt = optimize.RandomStep{Seed: cc.Cfg.Backend.Seed, Logger: cc.Logger}
	case OptimizerGradient:
		opt = optimize.GradientDescent{LearningRate: opts.LearningRate, MaxIter: opts.MaxIter, Logger: cc.Logger}
	default:
		return optimize.Result{}, fmt.Errorf("unknown optimizer %q (want random or gradient)", opts.Optimizer)
	}
	cc.Logger.Debug("optimizing ansatz", "optimizer", opts.Optimizer, "params", n, "terms", op.Len())
	return opt.Minimize(cmd.Context(), cost, initial)
}
