package dice

import "go.uber.org/zap"

// LoggedRoller evaluates rollers against one stream and logs each result at
// debug level with its description, trace and final result.
type LoggedRoller struct {
	rng    Rng
	logger *zap.Logger
}

// NewLoggedRoller creates a LoggedRoller that rolls with rng and logs each
// roll to logger.
//
// Precondition: rng must come from Seeded or NewRng; logger must be non-nil.
func NewLoggedRoller(rng Rng, logger *zap.Logger) *LoggedRoller {
	return &LoggedRoller{rng: rng, logger: logger}
}

// Roll evaluates r and logs the result.
//
// Postcondition: result logged at debug level.
func (l *LoggedRoller) Roll(r Roller) Roll {
	result := r.RollWith(l.rng)
	l.logger.Debug("dice roll",
		zap.String("description", r.Description()),
		zap.String("intermediate", result.IntermediateResults()),
		zap.String("final", result.FinalResult()),
	)
	return result
}

// RollExpr parses expr, builds it with resolve and rolls it.
//
// Precondition: expr must be a valid dice expression string.
// Postcondition: Returns a Roll or a parse/build error.
func (l *LoggedRoller) RollExpr(expr string, resolve DieResolver) (Roll, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	r, err := e.Build(resolve)
	if err != nil {
		return nil, err
	}
	return l.Roll(r), nil
}

// Stats builds a StatsRoller over runs rolls of r and evaluates it.
//
// Postcondition: Returns the stats roll, or ErrNoRuns when runs < 1.
func (l *LoggedRoller) Stats(r SubRoller, runs int) (*StatsRoll, error) {
	s, err := NewStats(r, runs)
	if err != nil {
		return nil, err
	}
	result := s.StatsRollWith(l.rng)
	l.logger.Debug("dice stats",
		zap.String("description", s.Description()),
		zap.Int("runs", runs),
		zap.String("final", result.FinalResult()),
	)
	return result, nil
}
