package ledger

import "github.com/pkg/errors"

// ErrWaitTimeout is returned by SubmitTransfer when one of the three
// suspension points (replies, queue head, acks) never resolves within the
// configured wait timeout. Spec §9 calls this out as a MAY: "an
// implementation MAY add a per-wait timeout that surfaces a fatal
// protocol error but MUST NOT silently resume." Resuming after this error
// is not safe — the peer should be treated as failed.
var ErrWaitTimeout = errors.New("timed out waiting on mutex protocol condition")
