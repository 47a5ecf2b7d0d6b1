package beanpod

import "github.com/danpasecinic/beanpod/internal/container"

type (
	ResolveHook = container.ResolveHook
	ProvideHook = container.ProvideHook
	// StartHook observes each eager singleton built during Start.
	StartHook = container.StartHook
	// StopHook observes each singleton destroyed during Close.
	StopHook       = container.StopHook
	TransitionHook = container.TransitionHook
)
