package ecs

// UpdateFrame is passed to every UpdateFunc call of an update.
type UpdateFrame struct {
	DeltaTime float64
	ECS       *ECS
	Scene     *Scene
	// Entity owns the components of the current call.
	Entity   Entity
	Commands *Commands
}

func newUpdateFrame(dt float64, e *ECS, scene *Scene) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		ECS:       e,
		Scene:     scene,
		Commands:  newCommands(),
	}
}
