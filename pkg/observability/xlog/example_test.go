package xlog_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

func Example() {
	var buf bytes.Buffer
	logger, cleanup, _ := xlog.New().
		SetOutput(&buf).
		SetEnrich(false).
		Build()
	defer cleanup()

	logger.Info(context.Background(), "call finished",
		xlog.Target("inventory"),
		xlog.Status("ok"),
	)

	out := buf.String()
	fmt.Println(strings.Contains(out, "level=INFO"))
	fmt.Println(strings.Contains(out, "target=inventory"))
	// Output:
	// true
	// true
}
