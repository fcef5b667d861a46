package dice

import (
	"sync"

	"go.uber.org/zap"
)

// Roller binds a Source to a logger. Every roll it performs is logged at
// debug level so a table can be audited after the fact. A Roller is safe
// for concurrent use; draws from its Source are serialized.
type Roller struct {
	mu     sync.Mutex
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Pool rolls a d6 pool and logs the dice and their evaluation.
func (r *Roller) Pool(req PoolRequest) (PoolResult, error) {
	r.mu.Lock()
	res, err := RollPool(req, r.src)
	r.mu.Unlock()
	if err != nil {
		r.logger.Debug("pool roll rejected",
			zap.Int("pool", req.Size),
			zap.Int("threshold", req.Threshold),
			zap.Error(err),
		)
		return PoolResult{}, err
	}
	r.logger.Debug("pool roll",
		zap.Int("pool", req.Size),
		zap.Int("threshold", res.Summary.Threshold),
		zap.Bool("edge", req.UseEdge),
		zap.Ints("initial", res.Initial),
		zap.Ints("dice", res.Dice),
		zap.Int("successes", res.Summary.Successes),
		zap.Int("ones", res.Summary.Ones),
		zap.Bool("glitch", res.Summary.Glitch),
		zap.Bool("critical_glitch", res.Summary.CriticalGlitch),
	)
	return res, nil
}

// Expr parses and rolls a free-form expression, logging the result.
func (r *Roller) Expr(expr string) (RollResult, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return RollResult{}, err
	}
	r.mu.Lock()
	res := RollExpression(e, r.src)
	r.mu.Unlock()
	r.logger.Debug("expression roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Ints("dropped", res.Dropped),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res, nil
}
