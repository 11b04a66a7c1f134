package prompt

import "github.com/abhisek/ideate/internal/ideation"

// startedMsg is sent once the liveness probe passed and the job is running.
type startedMsg struct {
	run   *ideation.Run
	input ideation.StartInput
}

// startFailedMsg is sent when validation or the liveness probe failed.
type startFailedMsg struct {
	err error
}
