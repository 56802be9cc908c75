package domain

// GuardOutcome is the per-render state of the access guard.
type GuardOutcome string

const (
	GuardLoading       GuardOutcome = "loading"
	GuardRedirectLogin GuardOutcome = "redirect_login"
	GuardRedirectRoot  GuardOutcome = "redirect_root"
	GuardRender        GuardOutcome = "render"
)

// GuardDecision is what the guard tells the router to do with a protected view.
type GuardDecision struct {
	Outcome  GuardOutcome
	Location string
}
