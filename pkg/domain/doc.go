/*
Package domain contains the shared vocabulary of the tela translator.

It holds the types every layer agrees on, while the automata themselves live in
their own packages. This package is kept free of I/O and persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Config: The optimizations applied by the translation, with named Presets.
  - Request / Response: What a host asks the Engine to render, and what it gets back.
  - Event: A notable construction decision, delivered to an Observer.
  - Stats: The size and acceptance of a finished translation.
*/
package domain
