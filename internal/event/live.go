package event

import "context"

const LiveGroup = "catalog"

// GroupBroadcaster pushes a named method call to every member of a group.
type GroupBroadcaster interface {
	Broadcast(ctx context.Context, group, method string, payload map[string]any) error
}

type LiveChannel struct {
	broadcaster GroupBroadcaster
	group       string
}

func NewLiveChannel(b GroupBroadcaster, group string) *LiveChannel {
	if group == "" {
		group = LiveGroup
	}
	return &LiveChannel{broadcaster: b, group: group}
}

func (c *LiveChannel) Name() string { return "live" }

func (c *LiveChannel) Dispatch(ctx context.Context, ev MutationEvent) error {
	return c.broadcaster.Broadcast(ctx, c.group, ev.Kind.Method(), ev.Payload())
}
