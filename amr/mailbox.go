package amr

import "fmt"

// DynBuffer is a growable message buffer that keeps its storage across resets
type DynBuffer[T any] struct {
	cells []T
}

func NewDynBuffer[T any](capacity int) *DynBuffer[T] {
	return &DynBuffer[T]{cells: make([]T, 0, capacity)}
}

func (db *DynBuffer[T]) Add(msg T) { db.cells = append(db.cells, msg) }

func (db *DynBuffer[T]) Cells() []T { return db.cells }

func (db *DynBuffer[T]) Reset() { db.cells = db.cells[:0] }

// MailBox moves messages between workers. The pattern for one round is:
// every worker posts, then delivers; all workers wait on a barrier; then
// every worker receives and clears.
type MailBox[T any] struct {
	NP           int
	MessageChans []chan *DynBuffer[T]    // One for each worker
	PostMsgQs    []map[int]*DynBuffer[T] // One for each worker, key is target
	ReceiveMsgQs []*DynBuffer[T]         // One for each worker
	MailFlag     []bool                  // Worker has messages in its outbox
}

func NewMailBox[T any](NP int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan *DynBuffer[T], NP),
		PostMsgQs:    make([]map[int]*DynBuffer[T], NP),
		ReceiveMsgQs: make([]*DynBuffer[T], NP),
		MailFlag:     make([]bool, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan *DynBuffer[T], NP) // Worst case is all-to-all
		mb.PostMsgQs[n] = make(map[int]*DynBuffer[T])
		mb.ReceiveMsgQs[n] = NewDynBuffer[T](0)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myWorker, target int, msg T) {
	tgt, exists := mb.PostMsgQs[myWorker][target]
	if !exists {
		tgt = NewDynBuffer[T](0)
		mb.PostMsgQs[myWorker][target] = tgt
	}
	tgt.Add(msg)
	mb.MailFlag[myWorker] = true
}

func (mb *MailBox[T]) DeliverMyMessages(myWorker int) {
	if !mb.MailFlag[myWorker] {
		return
	}
	for target, msgBuffer := range mb.PostMsgQs[myWorker] {
		if target < 0 || target > mb.NP-1 {
			panic(fmt.Sprintf("target worker %d out of bounds", target))
		}
		if len(msgBuffer.Cells()) == 0 {
			continue
		}
		mb.MessageChans[target] <- msgBuffer
	}
	mb.MailFlag[myWorker] = false
}

func (mb *MailBox[T]) ReceiveMyMessages(myWorker int) []T {
	for {
		select {
		case msgBuffer := <-mb.MessageChans[myWorker]:
			for _, msg := range msgBuffer.Cells() {
				mb.ReceiveMsgQs[myWorker].Add(msg)
			}
			msgBuffer.Reset() // Reset the originating buffer
		default:
			return mb.ReceiveMsgQs[myWorker].Cells()
		}
	}
}

func (mb *MailBox[T]) ClearMyMessages(myWorker int) {
	mb.ReceiveMsgQs[myWorker].Reset()
}
