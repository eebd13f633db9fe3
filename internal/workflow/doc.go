// Package workflow coordinates queue processing. A bounded pool of workers
// claims pending documents and drives each one through segmentation and
// alignment sequentially; failures are classified and routed to failed or
// review without touching other documents.
package workflow
