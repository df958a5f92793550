package brownout

import (
	"slices"

	"github.com/samber/lo"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// HostAccount holds the cumulative accounting of one host. Every field only
// ever grows during a run.
type HostAccount struct {
	HostID           string  `json:"host_id"`
	RevenueLoss      float64 `json:"revenue_loss"`
	ObtainedRevenue  float64 `json:"obtained_revenue"`
	DeactivatedRatio float64 `json:"deactivated_ratio"`
	Triggers         int     `json:"triggers"`
}

// Ledger keeps the per-host accounts and the run-wide interval tables.
// It is not safe for concurrent use; Controller serializes access.
type Ledger struct {
	accounts  map[string]*HostAccount
	hostOrder []string

	triggerCount int
	intervals    map[float64]struct{}

	activeHosts []models.IntervalCount
	activeIndex map[float64]int
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		accounts:    make(map[string]*HostAccount),
		intervals:   make(map[float64]struct{}),
		activeIndex: make(map[float64]int),
	}
}

// account returns the account of hostID, creating it on first use
func (l *Ledger) account(hostID string) *HostAccount {
	if acct, ok := l.accounts[hostID]; ok {
		return acct
	}
	acct := &HostAccount{HostID: hostID}
	l.accounts[hostID] = acct
	l.hostOrder = append(l.hostOrder, hostID)
	return acct
}

// addRevenueLoss charges the price of every disabled component
func (l *Ledger) addRevenueLoss(acct *HostAccount, components []*models.OptionalComponent) float64 {
	loss := lo.SumBy(disabledComponents(components), func(c *models.OptionalComponent) float64 {
		return c.Price
	})
	acct.RevenueLoss += loss
	return loss
}

// addDeactivatedRatio adds the summed utilization share of the disabled
// components. Hosts without VMs and workloads without components add 0.
func (l *Ledger) addDeactivatedRatio(acct *HostAccount, components []*models.OptionalComponent, vmCount int) float64 {
	if vmCount == 0 || len(components) == 0 {
		return 0
	}
	ratio := lo.SumBy(disabledComponents(components), func(c *models.OptionalComponent) float64 {
		return c.Utilization
	})
	acct.DeactivatedRatio += ratio
	return ratio
}

// addObtainedRevenue credits one unit per executing workload
func (l *Ledger) addObtainedRevenue(acct *HostAccount, executing int) float64 {
	revenue := float64(executing)
	acct.ObtainedRevenue += revenue
	return revenue
}

func (l *Ledger) recordTrigger(acct *HostAccount) {
	acct.Triggers++
	l.triggerCount++
}

func (l *Ledger) recordInterval(t float64) {
	l.intervals[t] = struct{}{}
}

// recordActiveHosts stores the active host count for intervalStart. A
// repeated key overwrites the count but keeps its original position.
func (l *Ledger) recordActiveHosts(intervalStart float64, count int) {
	if i, ok := l.activeIndex[intervalStart]; ok {
		l.activeHosts[i].ActiveHosts = count
		return
	}
	l.activeIndex[intervalStart] = len(l.activeHosts)
	l.activeHosts = append(l.activeHosts, models.IntervalCount{IntervalStart: intervalStart, ActiveHosts: count})
}

// Accounts returns a copy of every host account in first-seen order
func (l *Ledger) Accounts() []HostAccount {
	return lo.Map(l.hostOrder, func(id string, _ int) HostAccount {
		return *l.accounts[id]
	})
}

// Account returns a copy of one host's account
func (l *Ledger) Account(hostID string) (HostAccount, bool) {
	acct, ok := l.accounts[hostID]
	if !ok {
		return HostAccount{}, false
	}
	return *acct, true
}

// RevenueLoss sums the revenue loss over all hosts
func (l *Ledger) RevenueLoss() float64 {
	return l.sum(func(a *HostAccount) float64 { return a.RevenueLoss })
}

// ObtainedRevenue sums the obtained revenue over all hosts
func (l *Ledger) ObtainedRevenue() float64 {
	return l.sum(func(a *HostAccount) float64 { return a.ObtainedRevenue })
}

// DeactivatedRatio sums the deactivated ratio over all hosts
func (l *Ledger) DeactivatedRatio() float64 {
	return l.sum(func(a *HostAccount) float64 { return a.DeactivatedRatio })
}

// sum adds f over the accounts in first-seen order so totals are reproducible
func (l *Ledger) sum(f func(*HostAccount) float64) float64 {
	total := 0.0
	for _, id := range l.hostOrder {
		total += f(l.accounts[id])
	}
	return total
}

// TriggerCount returns how many host evaluations triggered degradation
func (l *Ledger) TriggerCount() int {
	return l.triggerCount
}

// TriggerableIntervals returns the distinct processing times recorded so far
func (l *Ledger) TriggerableIntervals() int {
	return len(l.intervals)
}

// ActiveHostsByInterval returns the active host table in insertion order
func (l *Ledger) ActiveHostsByInterval() []models.IntervalCount {
	return slices.Clone(l.activeHosts)
}
