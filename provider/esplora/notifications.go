package esplora

import (
	"context"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/chainntnfs"
)

// confirmationNotifier polls GetTxStatus/GetChainTip for registered txids
// until each reaches its required confirmation depth.
type confirmationNotifier struct {
	client *Client

	pollInterval time.Duration

	mu       sync.Mutex
	requests map[chainhash.Hash]struct{}

	quit chan struct{}
	wg   sync.WaitGroup
}

func newConfirmationNotifier(client *Client, pollInterval time.Duration) *confirmationNotifier {
	return &confirmationNotifier{
		client:       client,
		pollInterval: pollInterval,
		requests:     make(map[chainhash.Hash]struct{}),
		quit:         make(chan struct{}),
	}
}

func (n *confirmationNotifier) stop() {
	close(n.quit)
	n.wg.Wait()
}

// register watches txid for numConfs confirmations, delivering on the
// returned ConfirmationEvent once satisfied or errChan on failure.
func (n *confirmationNotifier) register(ctx context.Context, txid *chainhash.Hash, numConfs uint32) (*chainntnfs.ConfirmationEvent, chan error) {
	confChan := make(chan *chainntnfs.TxConfirmation, 1)
	errChan := make(chan error, 1)

	n.mu.Lock()
	n.requests[*txid] = struct{}{}
	n.mu.Unlock()

	n.wg.Add(1)
	go n.poll(ctx, txid, numConfs, confChan, errChan)

	return &chainntnfs.ConfirmationEvent{Confirmed: confChan}, errChan
}

func (n *confirmationNotifier) poll(ctx context.Context, txid *chainhash.Hash, numConfs uint32, confChan chan *chainntnfs.TxConfirmation, errChan chan error) {
	defer n.wg.Done()
	defer func() {
		n.mu.Lock()
		delete(n.requests, *txid)
		n.mu.Unlock()
	}()

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.quit:
			return
		case <-ticker.C:
			status, err := n.client.GetTxStatus(ctx, txid.String())
			if err != nil || !status.Confirmed {
				continue
			}

			tip, err := n.client.GetChainTip(ctx)
			if err != nil {
				continue
			}

			confs := tip - status.BlockHeight + 1
			if confs < numConfs {
				continue
			}

			select {
			case confChan <- &chainntnfs.TxConfirmation{BlockHeight: status.BlockHeight}:
			case <-ctx.Done():
			case <-n.quit:
			}
			return
		}
	}
}

// epochNotifier polls GetChainTip and fans out new heights to subscribers.
type epochNotifier struct {
	client *Client

	pollInterval time.Duration

	mu          sync.RWMutex
	subscribers []chan int32
	lastHeight  uint32

	quit chan struct{}
	wg   sync.WaitGroup
}

func newEpochNotifier(client *Client, pollInterval time.Duration) *epochNotifier {
	return &epochNotifier{
		client:       client,
		pollInterval: pollInterval,
		quit:         make(chan struct{}),
	}
}

func (n *epochNotifier) start() {
	n.wg.Add(1)
	go n.pollLoop()
}

func (n *epochNotifier) stop() {
	close(n.quit)
	n.wg.Wait()
}

func (n *epochNotifier) subscribe() chan int32 {
	ch := make(chan int32, 10)
	n.mu.Lock()
	n.subscribers = append(n.subscribers, ch)
	n.mu.Unlock()
	return ch
}

func (n *epochNotifier) pollLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.quit:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			height, err := n.client.GetChainTip(ctx)
			cancel()
			if err != nil {
				continue
			}

			n.mu.RLock()
			if height > n.lastHeight {
				for _, sub := range n.subscribers {
					select {
					case sub <- int32(height):
					default:
					}
				}
			}
			n.mu.RUnlock()

			if height > n.lastHeight {
				n.mu.Lock()
				n.lastHeight = height
				n.mu.Unlock()
			}
		}
	}
}
