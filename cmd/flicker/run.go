package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterachavez/focus-flicker-beta-f/internal/config"
	"github.com/peterachavez/focus-flicker-beta-f/internal/report"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
	"github.com/peterachavez/focus-flicker-beta-f/internal/session"
	"github.com/peterachavez/focus-flicker-beta-f/internal/staircase"
	"github.com/peterachavez/focus-flicker-beta-f/internal/trial"
)

// simulateAccuracy is the hit probability of the synthetic participant
// used by --simulate.
const simulateAccuracy = 0.85

func cmdRun(cfg config.Config, args []string) {
	taskName := flagValue(args, "--task")
	if taskName == "" {
		fatal("usage: flicker run --task <flex-sort|focus-flicker> [--seed N] [--simulate]")
	}
	task, err := scoring.ParseVariant(taskName)
	if err != nil {
		fatal("%v", err)
	}

	var seed uint64
	if v := flagValue(args, "--seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fatal("bad --seed value %q", v)
		}
		seed = n
	}
	simulate := hasFlag(args, "--simulate")

	params := session.Params{Seed: seed}
	var sess *session.Session
	switch task {
	case scoring.VariantMatch:
		params.Blocks = cfg.Task.MatchBlocks
		sess = session.NewMatch(params)
	case scoring.VariantFlicker:
		params.Blocks = cfg.Task.FlickerBlocks
		params.ChangeProbability = cfg.Task.ChangeProb
		params.StartMs = cfg.Task.FlickerStartMs
		params.StepMs = cfg.Task.FlickerStepMs
		params.MinMs = cfg.Task.FlickerMinMs
		params.MaxMs = cfg.Task.FlickerMaxMs
		sess = session.NewFlicker(params)
	}

	var respond responder
	if simulate {
		respond = simulatedResponder(seed)
	} else {
		respond = promptResponder(bufio.NewReader(os.Stdin))
		if task == scoring.VariantMatch {
			runPractice(cfg, seed, respond)
		}
	}

	for !sess.Done() {
		spec, err := sess.Next()
		if err != nil {
			fatal("run: %v", err)
		}
		choice, seconds := respond(spec, sess)
		rec, err := sess.Respond(choice, seconds)
		if err != nil {
			fatal("run: %v", err)
		}
		if !simulate {
			if rec.Correct {
				fmt.Println("correct")
			} else {
				fmt.Println("incorrect")
			}
			if sess.Adaptive().GuidedMode && rec.ConsecutiveErrors == 0 {
				fmt.Println("(guided mode: take your time, the rule may have changed)")
			}
		}
	}

	sum, err := sess.Complete()
	if err != nil {
		fatal("run: %v", err)
	}

	db := mustOpenStore(cfg)
	defer db.Close()
	if err := db.Save(sum); err != nil {
		fatal("save: %v", err)
	}

	fmt.Println()
	fmt.Print(report.Render(sum, report.TierFree))
	fmt.Printf("saved as %s — see `flicker report %s`\n", sum.AssessmentID, sum.AssessmentID)
}

// responder produces a choice and response time for one trial.
type responder func(spec trial.Spec, sess *session.Session) (choice int, seconds float64)

// promptResponder reads answers from the terminal.
func promptResponder(in *bufio.Reader) responder {
	return func(spec trial.Spec, sess *session.Session) (int, float64) {
		fmt.Println()
		fmt.Printf("Trial %d of %d\n", sess.Trial(), sess.TotalTrials())

		start := time.Now()
		switch t := spec.(type) {
		case trial.MatchTrial:
			fmt.Printf("  Target:  %s\n", t.Target)
			for i, opt := range t.Options {
				fmt.Printf("  [%d] %s\n", i+1, opt)
			}
			n := promptInt(in, "Which option matches? [1-3]: ", 1, len(t.Options))
			return n - 1, time.Since(start).Seconds()

		case trial.FlickerTrial:
			fmt.Printf("  Scene A: %s\n", t.Base)
			fmt.Printf("  Scene B: %s  (shown %dms apart)\n", t.Altered, sess.Adaptive().DurationMs)
			if promptYesNo(in, "Did something change? [y/n]: ") {
				return 1, time.Since(start).Seconds()
			}
			return 0, time.Since(start).Seconds()
		}
		return 0, 0
	}
}

// simulatedResponder answers correctly with fixed probability, for
// demos and pipeline testing.
func simulatedResponder(seed uint64) responder {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed+1, seed^0xdeadbeef))

	return func(spec trial.Spec, sess *session.Session) (int, float64) {
		correct := rng.Float64() < simulateAccuracy
		seconds := 0.6 + rng.Float64()

		switch t := spec.(type) {
		case trial.MatchTrial:
			if correct {
				return t.CorrectIndex, seconds
			}
			return (t.CorrectIndex + 1 + rng.IntN(len(t.Options)-1)) % len(t.Options), seconds

		case trial.FlickerTrial:
			saidChange := t.HasChange == correct
			if saidChange {
				return 1, seconds
			}
			return 0, seconds
		}
		return 0, seconds
	}
}

// runPractice walks the participant through unscored match trials until
// they show the pattern or the practice trial allowance runs out.
func runPractice(cfg config.Config, seed uint64, respond responder) {
	limit := cfg.Task.PracticeTrials
	if limit <= 0 {
		return
	}

	fmt.Println("Practice round: find the option that matches the target.")

	practice := session.NewMatch(session.Params{Blocks: 1, Seed: seed + 1})
	st := staircase.NewMatch()
	for i := 0; i < limit && !st.PatternConfirmed; i++ {
		spec, err := practice.Next()
		if err != nil {
			return
		}
		mt, ok := spec.(trial.MatchTrial)
		if !ok {
			return
		}
		choice, seconds := respond(spec, practice)
		if _, err := practice.Respond(choice, seconds); err != nil {
			return
		}
		if choice == mt.CorrectIndex {
			fmt.Println("correct")
			st.Record(true)
		} else {
			fmt.Println("incorrect — look for the shared dimension")
			st.Record(false)
		}
	}

	if st.PatternConfirmed {
		fmt.Println("Pattern confirmed. Starting the assessment.")
	} else {
		fmt.Println("Practice over. Starting the assessment.")
	}
	fmt.Println()
}

func promptInt(in *bufio.Reader, prompt string, lo, hi int) int {
	for {
		fmt.Print(prompt)
		line, err := in.ReadString('\n')
		if err != nil {
			fatal("read input: %v", err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= lo && n <= hi {
			return n
		}
		fmt.Printf("enter a number between %d and %d\n", lo, hi)
	}
}

func promptYesNo(in *bufio.Reader, prompt string) bool {
	for {
		fmt.Print(prompt)
		line, err := in.ReadString('\n')
		if err != nil {
			fatal("read input: %v", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Println("answer y or n")
	}
}
