package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mcdev12/workshop/go/internal/models"
)

func TestDecode_StateUpdate(t *testing.T) {
	frame := []byte(`{
		"type": "state_update",
		"data": {
			"phase": "VOTING",
			"timer": 45,
			"users": {
				"u1": {"id": "u1", "name": "Ada", "team_id": "T2"},
				"u2": {"id": "u2", "name": "Bob", "team_id": null}
			},
			"teams": {
				"T1": {"id": "T1", "name": "Team 1", "context": "Sell ice", "members": ["u9"], "score": 7.5},
				"T2": {"id": "T2", "name": "Team 2", "context": "Time machine", "members": ["u1"], "score": 0}
			},
			"presenting_team_id": "T1",
			"presented_teams": []
		}
	}`)

	in, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	update, ok := in.(StateUpdate)
	if !ok {
		t.Fatalf("decoded %T, want StateUpdate", in)
	}

	snap := update.Snapshot
	if snap.Phase != models.PhaseVoting || snap.TimerSeconds != 45 || snap.PresentingTeamID != "T1" {
		t.Fatalf("snapshot header = %+v", snap)
	}
	if snap.Seq != 0 {
		t.Fatalf("seq = %d, want 0 when absent", snap.Seq)
	}
	if u := snap.Users["u2"]; u.TeamID != "" {
		t.Fatalf("null team_id decoded as %q", u.TeamID)
	}
	if team := snap.Teams["T1"]; team.Score != 7.5 || len(team.Members) != 1 {
		t.Fatalf("team = %+v", team)
	}
}

func TestDecode_NullPresenter(t *testing.T) {
	in, err := Decode([]byte(`{"type":"state_update","data":{"phase":"LOBBY","timer":0,"users":{},"teams":{},"presenting_team_id":null}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := in.(StateUpdate).Snapshot.PresentingTeamID; got != "" {
		t.Fatalf("presenting team = %q, want empty", got)
	}
}

func TestDecode_OtherTypes(t *testing.T) {
	in, err := Decode([]byte(`{"type":"session_restart"}`))
	if err != nil {
		t.Fatalf("decode restart: %v", err)
	}
	if _, ok := in.(SessionRestart); !ok {
		t.Fatalf("decoded %T, want SessionRestart", in)
	}

	in, err = Decode([]byte(`{"type":"identity_confirmed","data":{"user_id":"u1","name":"Ada"}}`))
	if err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if got := in.(IdentityConfirmed).Identity; got != (models.Identity{UserID: "u1", Name: "Ada"}) {
		t.Fatalf("identity = %+v", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name    string
		frame   string
		wantErr error
	}{
		{name: "unknown type", frame: `{"type":"player_picked","data":{}}`, wantErr: ErrUnknownType},
		{name: "outbound type", frame: `{"type":"cast_vote","data":{"user_id":"u1","score":3}}`, wantErr: ErrUnknownType},
		{name: "not json", frame: `state_update`},
		{name: "bad snapshot", frame: `{"type":"state_update","data":{"timer":"soon"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.frame))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	frame, err := Encode(TypeCastVote, CastVotePayload{UserID: "u1", Score: 7})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(frame, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != "cast_vote" {
		t.Fatalf("type = %v", got["type"])
	}
	data := got["data"].(map[string]any)
	if data["user_id"] != "u1" || data["score"] != float64(7) {
		t.Fatalf("data = %v", data)
	}

	frame, err = Encode(TypeHostNextStep, nil)
	if err != nil {
		t.Fatalf("encode without payload: %v", err)
	}
	if string(frame) != `{"type":"host_next_step"}` {
		t.Fatalf("frame = %s", frame)
	}
}
