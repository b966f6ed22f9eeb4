// Package alerts implements the rule evaluation engine and webhook delivery
// for PumpSight alerting. Rules are evaluated against completed simulation
// runs; webhooks are delivered to Teams, Slack, or generic HTTP targets.
package alerts
