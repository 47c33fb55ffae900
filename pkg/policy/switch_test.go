package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSwitch_Targets(t *testing.T) {
	tests := []struct {
		event SwitchEvent
		want  Context
	}{
		{EventLogin, ContextPersonal},
		{EventLogout, ContextPersonal},
		{EventOpenOrg, ContextOrg},
		{EventExitOrg, ContextPersonal},
		{EventOpenCourse, ContextCourse},
		{EventExitCourse, ContextOrg},
		{EventOpenPath, ContextPath},
		{EventExitPath, ContextOrg},
		{EventOpenAdmin, ContextAdmin},
		{EventExitAdmin, ContextOrg},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSwitch(tt.event, ContextPersonal))
		})
	}
}

// The switch table must produce the same target no matter which context the
// event originated from.
func TestResolveSwitch_ContextIndependent(t *testing.T) {
	for _, event := range SwitchEvents() {
		for _, from := range AllContexts {
			for _, other := range AllContexts {
				assert.Equal(t,
					ResolveSwitch(event, from),
					ResolveSwitch(event, other),
					"event %s resolved differently from %s vs %s", event, from, other)
			}
		}
	}
}

func TestResolveSwitch_UnknownEventFailsSafe(t *testing.T) {
	assert.Equal(t, ContextPersonal, ResolveSwitch(SwitchEvent("teleport"), ContextAdmin))
}
