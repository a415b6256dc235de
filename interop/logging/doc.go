// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*

The shapes client writes to two sinks:

1. Standard output: the user-facing transcript of the run (the topic banner, one
line per received shape or disposal, status events and "Done.").
2. Internal logs: diagnostics emitted through logrus, by default to stderr. Their
level, format and destination come from a YAML file (logging-config.yaml) when
one is present, otherwise from the --log-level flag.

*/
package logging
