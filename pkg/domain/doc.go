/*
Package domain contains the core data models of the Abacus calculator.

It defines the closed key set consumed by a session, the session value itself
(edit buffer, mode tag, variables, display settings) and the plain-text View
handed to renderers. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Key: A discrete key code from the keypad protocol (digits, operators, functions, modifiers).
  - State: The owned session value mutated only through the runtime state machine.
  - Variables: The fixed variable set (Ans, X, Y, A, B, C, D, M) visible to evaluations.
  - View: The read-only display fields a renderer draws after every key.
*/
package domain
