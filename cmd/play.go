package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/midiout"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/unit"
	"github.com/tightknit/bandsync/wire"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Runs this unit",
	Long:  `Runs this unit with the configured role until interrupted`,
	Run: func(cmd *cobra.Command, args []string) {
		play()
	},
}

// statusBoard is the shared snapshot behind the status endpoint. The unit
// loop writes it, HTTP handlers read it.
type statusBoard struct {
	mu       sync.Mutex
	snapshot model.StatusResponse
	notices  []string
}

func (b *statusBoard) Set(s model.StatusResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.Notices = append([]string(nil), b.notices...)
	b.snapshot = s
}

func (b *statusBoard) AddNotices(msgs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, msgs...)
	if len(b.notices) > 10 {
		b.notices = b.notices[len(b.notices)-10:]
	}
}

func (b *statusBoard) Get() model.StatusResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// boardNotifier logs degraded-state conditions and publishes them to the
// status board. Bursts (sync-loss flapping) are debounced before they hit
// the log.
type boardNotifier struct {
	board    *statusBoard
	debounce func(func())
	mu       sync.Mutex
	pending  []string
}

func newBoardNotifier(board *statusBoard) *boardNotifier {
	return &boardNotifier{
		board:    board,
		debounce: debounce.New(100 * time.Millisecond),
	}
}

func (n *boardNotifier) Notify(c unit.Condition, detail string) {
	msg := c.String()
	if detail != "" {
		msg += ": " + detail
	}
	n.mu.Lock()
	n.pending = append(n.pending, msg)
	n.mu.Unlock()
	n.debounce(n.flush)
}

func (n *boardNotifier) flush() {
	n.mu.Lock()
	msgs := n.pending
	n.pending = nil
	n.mu.Unlock()
	for _, msg := range msgs {
		log.Printf("notice: %v", msg)
	}
	n.board.AddNotices(msgs)
}

// consoleSink prints events instead of playing them; the fallback when no
// MIDI port is configured.
type consoleSink struct{}

func (consoleSink) Play(events []model.NoteEvent) {
	for _, e := range events {
		fmt.Printf("note %v vel %v subdiv %v dur %v\n", e.Note, e.Velocity, e.Subdiv, e.Duration)
	}
}

func play() {
	board := &statusBoard{}
	notifier := newBoardNotifier(board)

	role, err := model.ParseRole(viper.GetString("role"))
	if err != nil {
		// out-of-range role: the unit comes up render-disabled but keeps
		// relaying sync, per the degraded-state design
		role = model.RoleID(255)
	}
	style, err := model.ParseArpStyle(viper.GetString("arp_style"))
	if err != nil {
		notifier.Notify(unit.CondConfigError, err.Error())
		style = model.ArpUp
	}

	port := viper.GetInt("sync_port")
	broadcastAddr := fmt.Sprintf("%v:%d", viper.GetString("broadcast"), port)
	channel, err := wire.NewUDPChannel(port, broadcastAddr)
	if err != nil {
		panic("Could not open sync channel: " + err.Error())
	}
	defer channel.Close()

	songPath := filepath.Join(constants.GetAssetDir(), viper.GetString("song"))
	song := unit.LoadSongOrDefault(songPath, notifier)

	var sink unit.EventSink = consoleSink{}
	if portIndex := viper.GetInt("midi_port"); portIndex >= 0 {
		midiSink, err := midiout.New(portIndex, uint8(viper.GetInt("midi_channel")))
		if err != nil {
			panic("Could not open MIDI out: " + err.Error())
		}
		defer midiSink.Close()
		sink = midiSink
	}

	u := unit.New(unit.Config{
		Role:          role,
		Boss:          viper.GetBool("boss"),
		ArpStyle:      style,
		SyncTolerance: viper.GetInt("sync_tolerance"),
	}, song, channel, sink, notifier)

	if addr := viper.GetString("status_addr"); addr != "" {
		go serveStatus(addr, board)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if viper.GetBool("boss") {
		if err := u.Start(time.Now()); err != nil {
			panic(err.Error())
		}
	}

	log.Printf("unit %v up: role=%v boss=%v song=%v", u.ID, role, viper.GetBool("boss"), songPath)
	runLoop(ctx, u, board)

	// a departing boss stops the band instead of leaving it free-running
	_ = u.Stop()
}

// runLoop is the unit's single cooperative loop plus a slower telemetry
// tick, all on one goroutine so the unit needs no locking.
func runLoop(ctx context.Context, u *unit.Unit, board *statusBoard) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	statusTicker := time.NewTicker(100 * time.Millisecond)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			u.Step(now)
		case <-statusTicker.C:
			board.Set(u.Status())
		}
	}
}

func serveStatus(addr string, board *statusBoard) {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(board.Get())
	}).Methods("GET")

	handler := cors.Default().Handler(router)
	log.Fatal(http.ListenAndServe(addr, handler))
}
