package amr

import (
	"sort"
	"sync"
)

// copyTask moves src[region-shift] into dst[region]
type copyTask struct {
	seq      int
	src, dst int
	region   Box
	shift    IntVect
}

type copyMsg struct {
	seq    int
	dst    int
	region Box
	data   []float64
}

// ParallelCopy fills dst (grown by dstNg) from src (grown by srcNg) wherever
// they overlap, including periodic images. The two fields may have different
// box arrays and owners but must share an index type. Where sources overlap
// the later source box wins.
func (mf *MultiFab) ParallelCopy(src *MultiFab, scomp, dcomp, nComp, srcNg,
	dstNg int, period Periodicity) {
	var (
		tasks  []copyTask
		shifts = period.Shifts(max(srcNg, dstNg))
	)
	if mf.IxType() != src.IxType() {
		panic("parallel copy between fields of different index types")
	}
	for j := 0; j < src.Len(); j++ {
		sb := src.GrownBox(j, srcNg)
		for _, s := range shifts {
			shifted := sb.Shift(s)
			for i := 0; i < mf.Len(); i++ {
				if ov := mf.GrownBox(i, dstNg).Intersect(shifted); ov.Ok() {
					tasks = append(tasks, copyTask{len(tasks), j, i, ov, s})
				}
			}
		}
	}
	runCopy(mf, src, scomp, dcomp, nComp, tasks)
}

// FillBoundary fills the ghost cells of every box from the valid cells of
// the other boxes and of the periodic images. Valid cells are never written.
func (mf *MultiFab) FillBoundary(period Periodicity) {
	if mf.nGrow == 0 {
		return
	}
	var (
		tasks  []copyTask
		shifts = period.Shifts(mf.nGrow)
	)
	for i := 0; i < mf.Len(); i++ {
		ghosts := BoxDiff(mf.GrownBox(i, mf.nGrow), mf.ValidBox(i))
		for _, g := range ghosts {
			for j := 0; j < mf.Len(); j++ {
				for _, s := range shifts {
					if j == i && s.IsZero() {
						continue
					}
					if ov := g.Intersect(mf.ValidBox(j).Shift(s)); ov.Ok() {
						tasks = append(tasks, copyTask{len(tasks), j, i, ov, s})
					}
				}
			}
		}
	}
	runCopy(mf, mf, 0, 0, mf.nComp, tasks)
}

// runCopy packs every region owned by a worker, delivers it through the
// mailbox, waits for all workers and then unpacks in task order.
func runCopy(dst, src *MultiFab, scomp, dcomp, nComp int, tasks []copyTask) {
	if len(tasks) == 0 {
		return
	}
	var (
		np    = max(dst.dm.NWorkers(), src.dm.NWorkers())
		mb    = NewMailBox[*copyMsg](np)
		wg    = sync.WaitGroup{}
		byOwn = make([][]copyTask, np)
	)
	for _, t := range tasks {
		w := src.dm.Owner(t.src)
		byOwn[w] = append(byOwn[w], t)
	}
	for w := 0; w < np; w++ {
		wg.Add(1)
		go func(w int) {
			for _, t := range byOwn[w] {
				mb.PostMessage(w, dst.dm.Owner(t.dst), &copyMsg{
					seq:    t.seq,
					dst:    t.dst,
					region: t.region,
					data:   src.fabs[t.src].Pack(t.region.Shift(t.shift.Scale(-1)), scomp, nComp),
				})
			}
			mb.DeliverMyMessages(w)
			wg.Done()
		}(w)
	}
	wg.Wait()
	for w := 0; w < np; w++ {
		wg.Add(1)
		go func(w int) {
			msgs := mb.ReceiveMyMessages(w)
			sort.Slice(msgs, func(a, b int) bool { return msgs[a].seq < msgs[b].seq })
			for _, m := range msgs {
				dst.fabs[m.dst].Unpack(m.region, dcomp, nComp, m.data)
			}
			mb.ClearMyMessages(w)
			wg.Done()
		}(w)
	}
	wg.Wait()
}
