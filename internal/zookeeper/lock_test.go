package zookeeper

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeName(t *testing.T) {
	assert.Equal(t, "calendar_2025-07", nodeName("calendar:2025-07"))
	assert.Equal(t, "coupon_a_b", nodeName("coupon:a/b"))
}

func TestSequenceOrdersProtectedNodes(t *testing.T) {
	children := []string{
		"_c_9f1e-lock-0000000003",
		"_c_0a2b-lock-0000000001",
		"_c_ffff-lock-0000000002",
	}
	sort.Slice(children, func(i, j int) bool { return sequence(children[i]) < sequence(children[j]) })
	assert.Equal(t, "_c_0a2b-lock-0000000001", children[0])
	assert.Equal(t, "_c_9f1e-lock-0000000003", children[2])
}
