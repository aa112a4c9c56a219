package config

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Apply configures the process-wide commonlog backend. An empty path logs
// to stderr, which keeps stdout free for stdio transports.
func (l Log) Apply() {
	var path *string
	if l.Path != "" {
		path = &l.Path
	}
	commonlog.Configure(l.Verbosity, path)
}
