package testutil

import (
	"fmt"
	"testing"
)

// TimeResponse is a worldtimeapi-style payload for datetime
func TimeResponse(datetime string) string {
	return fmt.Sprintf(`{"abbreviation":"CET","datetime":%q,"timezone":"Europe/Rome","utc_offset":"+01:00"}`, datetime)
}

// WriteConfigFixture writes a chatloop YAML config pointing at the given endpoints
func WriteConfigFixture(t *testing.T, dir, chatURL, timeURL, extra string) string {
	t.Helper()
	content := fmt.Sprintf("chat:\n  endpoint: %s\ntime:\n  endpoint: %s\n%s", chatURL, timeURL, extra)
	return WriteFile(t, dir, "chatloop.yaml", content)
}
