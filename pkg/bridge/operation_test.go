package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationArgs(t *testing.T) {
	tests := []struct {
		name   string
		inv    Invocation
		want   []string
		hasErr bool
	}{
		{"get products", NewInvocation(OpGetProducts), []string{"--get", "products"}, false},
		{"get users", NewInvocation(OpGetUsers), []string{"--get", "users"}, false},
		{"get reviews", NewInvocation(OpGetReviews, "7"), []string{"--get", "reviews", "7"}, false},
		{"add user", NewInvocation(OpAddUser, "Ada Lovelace"), []string{"--add-user", "Ada Lovelace"}, false},
		{
			"add product keeps name category price order",
			NewInvocation(OpAddProduct, "Widget", "General", "9.99"),
			[]string{"--add-product", "Widget", "General", "9.99"}, false,
		},
		{
			"add review",
			NewInvocation(OpAddReview, "1", "101", "5", "Great!"),
			[]string{"--add-review", "1", "101", "5", "Great!"}, false,
		},
		{"delete user", NewInvocation(OpDeleteUser, "3"), []string{"--delete-user", "3"}, false},
		{"delete product", NewInvocation(OpDeleteProduct, "4"), []string{"--delete-product", "4"}, false},
		{"purchase", NewInvocation(OpPurchase, "1", "101"), []string{"--purchase", "1", "101"}, false},
		{"rate", NewInvocation(OpRate, "1", "101", "4"), []string{"--rate", "1", "101", "4"}, false},
		{"recommend", NewInvocation(OpRecommend, "1"), []string{"--recommend", "1"}, false},
		{"shell metacharacters stay literal", NewInvocation(OpAddUser, "$(rm -rf /); `x`"), []string{"--add-user", "$(rm -rf /); `x`"}, false},
		{"too few params", NewInvocation(OpPurchase, "1"), nil, true},
		{"too many params", NewInvocation(OpGetUsers, "extra"), nil, true},
		{"unknown operation", NewInvocation(Operation("explode")), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.inv.Args()
			if tt.hasErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperations(t *testing.T) {
	ops := Operations()
	assert.Len(t, ops, 11)
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1], ops[i])
	}
	for _, op := range ops {
		_, ok := Lookup(op)
		assert.True(t, ok, "operation %s has no template", op)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	tmpl, ok := Lookup(OpAddProduct)
	require.True(t, ok)
	tmpl.Params[0] = "mutated"

	again, _ := Lookup(OpAddProduct)
	assert.Equal(t, []string{"name", "category", "price"}, again.Params)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup(Operation("nope"))
	assert.False(t, ok)
}
