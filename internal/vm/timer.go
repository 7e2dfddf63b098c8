package vm

import "time"

// TimerFrequency is the rate in Hz at which the delay and sound timers count down.
const TimerFrequency = 60

// TimerPeriod is the real time between two timer decrements.
const TimerPeriod = time.Second / TimerFrequency

// TickTimers advances the delay and sound timers by the elapsed real time,
// independent of how many instructions were executed. Time that does not
// add up to a full period is kept for the next call.
// When the sound timer reaches zero the ToneStopped callback is called.
func (m *Machine) TickTimers(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}

	m.timerRemainder += elapsed
	for m.timerRemainder >= TimerPeriod {
		m.timerRemainder -= TimerPeriod
		m.decrementTimers()
	}
}

func (m *Machine) decrementTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer == 0 {
		return
	}
	m.soundTimer--
	if m.soundTimer == 0 && m.opts.ToneStopped != nil {
		m.opts.ToneStopped()
	}
}
