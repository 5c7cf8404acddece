package nav_test

import (
	"testing"

	"github.com/opencustody/consolekit/nav"
	"github.com/stretchr/testify/require"
)

func TestNavigateNotifiesWatchersInOrder(t *testing.T) {
	n := nav.New("/")
	require.Equal(t, "/", n.Path())

	var seen []string
	n.Subscribe(func(path string) { seen = append(seen, "first:"+path) })
	n.Subscribe(func(path string) { seen = append(seen, "second:"+path) })

	n.Navigate("/clients")

	require.Equal(t, "/clients", n.Path())
	require.Equal(t, []string{"first:/clients", "second:/clients"}, seen)
}
