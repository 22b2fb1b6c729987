package service_test

import (
	"context"
	"testing"

	perr "callrec/internal/platform/errors"
	"callrec/internal/services/transcribe/domain"
	transvc "callrec/internal/services/transcribe/service"
)

type fakeEngine struct {
	got  []domain.JobRequest
	err  error
	refs int
}

func (f *fakeEngine) Submit(_ context.Context, req domain.JobRequest) (domain.JobRef, error) {
	if f.err != nil {
		return domain.JobRef{}, f.err
	}
	f.got = append(f.got, req)
	f.refs++
	return domain.JobRef{InvocationARN: "arn:aws:bedrock:::invocation/test"}, nil
}

func newSvc(eng *fakeEngine) *transvc.Svc {
	return transvc.New(eng, domain.OutputLocation{Bucket: "out-bucket", Prefix: "transcription-outputs"})
}

func TestHandleMessageSubmitsJob(t *testing.T) {
	eng := &fakeEngine{}
	svc := newSvc(eng)

	body := `{"callId":"call-42","audioS3Uri":"s3://in-bucket/call-42/audio.wav"}`
	if err := svc.HandleMessage(context.Background(), []byte(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.got) != 1 {
		t.Fatalf("got %d submissions, want 1", len(eng.got))
	}

	req := eng.got[0]
	if req.InputS3URI != "s3://in-bucket/call-42/audio.wav" {
		t.Fatalf("input uri = %q", req.InputS3URI)
	}
	if req.OutputS3URI != "s3://out-bucket/transcription-outputs/call-42/" {
		t.Fatalf("output uri = %q", req.OutputS3URI)
	}
	if req.ClientToken == "" {
		t.Fatal("client token is empty")
	}
}

func TestHandleMessageFreshTokenPerDelivery(t *testing.T) {
	eng := &fakeEngine{}
	svc := newSvc(eng)

	body := []byte(`{"callId":"call-42","audioS3Uri":"s3://in-bucket/call-42/audio.wav"}`)
	for i := 0; i < 2; i++ {
		if err := svc.HandleMessage(context.Background(), body); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	if eng.got[0].ClientToken == eng.got[1].ClientToken {
		t.Fatal("redelivery reused the client token")
	}
}

func TestHandleMessageUnwrapsPublishEnvelope(t *testing.T) {
	eng := &fakeEngine{}
	svc := newSvc(eng)

	body := `{"Message":"{\"callId\":\"call-7\",\"audioS3Uri\":\"s3://in-bucket/call-7/audio.wav\"}"}`
	if err := svc.HandleMessage(context.Background(), []byte(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.got[0].OutputS3URI != "s3://out-bucket/transcription-outputs/call-7/" {
		t.Fatalf("output uri = %q", eng.got[0].OutputS3URI)
	}
}

func TestHandleMessageRejectsInvalidInput(t *testing.T) {
	eng := &fakeEngine{}
	svc := newSvc(eng)

	cases := []struct {
		name string
		body string
		code perr.ErrorCode
	}{
		{"not json", "nope", perr.ErrorCodeJSON},
		{"missing audio uri", `{"callId":"call-42"}`, perr.ErrorCodeValidation},
		{"bad audio uri", `{"callId":"call-42","audioS3Uri":"file:///tmp/a.wav"}`, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.HandleMessage(context.Background(), []byte(tc.body))
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("error code = %v (%v), want %v", perr.CodeOf(err), err, tc.code)
			}
		})
	}
	if len(eng.got) != 0 {
		t.Fatalf("invalid input reached the engine: %d submissions", len(eng.got))
	}
}

func TestHandleMessagePropagatesEngineFailure(t *testing.T) {
	eng := &fakeEngine{err: perr.Upstreamf("throttled")}
	svc := newSvc(eng)

	body := []byte(`{"callId":"call-42","audioS3Uri":"s3://in-bucket/call-42/audio.wav"}`)
	if err := svc.HandleMessage(context.Background(), body); !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
