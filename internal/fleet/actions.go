package fleet

// Compose operation names as exposed through AvailableActions.
const (
	ActionUp          = "up"
	ActionCreate      = "create"
	ActionBuild       = "build"
	ActionPull        = "pull"
	ActionPush        = "push"
	ActionConfig      = "config"
	ActionStart       = "start"
	ActionStop        = "stop"
	ActionRestart     = "restart"
	ActionPause       = "pause"
	ActionUnpause     = "unpause"
	ActionPs          = "ps"
	ActionLogs        = "logs"
	ActionDown        = "down"
	ActionDownVolumes = "down-volumes"
	ActionRm          = "rm"
	ActionTop         = "top"
	ActionKill        = "kill"
)

// ComputeActions is the pure decision table answering which compose
// operations are legal for a project right now.
//
// Two families: operations that read or materialize service definitions
// (up, create, build, pull, push, config) need the compose file;
// operations addressing already-created Docker resources by project label
// (start, stop, restart, logs, ps, down, rm, top, kill, pause, unpause)
// only need containers in an appropriate state. Plain down removes
// containers and networks without the file; down-volumes additionally
// needs the file and is gated separately.
func ComputeActions(hasComposeFile bool, state EntityState) map[string]bool {
	isRunning := state.IsRunningLike()
	isStopped := state == StateStopped
	isPaused := state == StatePaused
	hasContainers := state.HasContainers()

	return map[string]bool{
		ActionUp:          hasComposeFile,
		ActionCreate:      hasComposeFile && !hasContainers,
		ActionBuild:       hasComposeFile,
		ActionPull:        hasComposeFile,
		ActionPush:        hasComposeFile,
		ActionConfig:      hasComposeFile,
		ActionStart:       hasContainers && !isRunning,
		ActionStop:        isRunning,
		ActionRestart:     hasContainers,
		ActionPause:       isRunning,
		ActionUnpause:     isPaused,
		ActionPs:          hasContainers,
		ActionLogs:        hasContainers,
		ActionDown:        hasContainers,
		ActionDownVolumes: hasContainers && hasComposeFile,
		ActionRm:          isStopped,
		ActionTop:         isRunning,
		ActionKill:        isRunning,
	}
}
