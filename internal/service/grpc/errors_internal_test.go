package grpcsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

func TestCodeOf(t *testing.T) {
	cases := map[string]struct {
		err  error
		want codes.Code
	}{
		"validation":      {err: domain.ErrClientRequired, want: codes.InvalidArgument},
		"joined":          {err: errors.Join(domain.ErrClientRequired, domain.ErrAmountNegative), want: codes.InvalidArgument},
		"order missing":   {err: domain.ErrOrderNotFound, want: codes.NotFound},
		"product missing": {err: fmt.Errorf("%w: id 3", domain.ErrProductNotFound), want: codes.NotFound},
		"overflow":        {err: fmt.Errorf("%w: card 2", domain.ErrLayoutOverflow), want: codes.FailedPrecondition},
		"remote":          {err: domain.RemoteFailure("fetch", errors.New("dial tcp")), want: codes.Unavailable},
		"timeout":         {err: domain.RemoteFailure("fetch", context.DeadlineExceeded), want: codes.DeadlineExceeded},
		"canceled":        {err: context.Canceled, want: codes.Canceled},
		"unknown":         {err: errors.New("boom"), want: codes.Internal},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, codeOf(tc.err))
		})
	}
}

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	require.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&ListOrdersRequest{Status: "pending", Force: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"pending","force":true}`, string(data))

	var decoded ListOrdersRequest
	require.NoError(t, codec.Unmarshal(data, &decoded))
	require.Equal(t, ListOrdersRequest{Status: "pending", Force: true}, decoded)

	var empty SetOrderStatusResponse
	require.NoError(t, codec.Unmarshal(nil, &empty))
}

func TestToDraft(t *testing.T) {
	draft, err := toDraft(OrderInput{Client: "Ana", Amount: " 12.30 ", Items: []LineItem{{ProductID: 1, Quantity: 2}}})
	require.NoError(t, err)
	require.Equal(t, "12.3", draft.Amount.String())
	require.Equal(t, []domain.LineItemDraft{{ProductID: 1, Quantity: 2}}, draft.Items)

	_, err = toDraft(OrderInput{Amount: "1,5"})
	require.True(t, domain.IsValidation(err))
}
