package sfx

// Id is used to identify a specific sound effect.
// Use Bank.Play to play the sounds after loading them.
type Id string

// Effects the jukebox plays as UI feedback.
const (
	Click     Id = "click"
	Queue     Id = "queue"
	SnareHard Id = "snare_hard"
)
